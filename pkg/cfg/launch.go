package cfg

import (
	"fmt"

	"github.com/kpotier/adsgrid/pkg/gridgen"
	"github.com/kpotier/adsgrid/pkg/gridquery"
)

// Calculation is an interface that only contains one method: Start. Every
// calculation must have a Start method that will launch the calculation. It
// must be a thread blocking method.
type Calculation interface {
	Start() error
}

// Launch launchs a specific calculation. It is a thread blocking method. The
// parameters required to launch the calculation must be in a file.
func Launch(name string, path string) error {
	var (
		err error
		cal Calculation
	)

	switch name {
	case gridgen.Type:
		cal, err = gridgen.New(path)
	case gridquery.Type:
		cal, err = gridquery.New(path)
	default:
		return fmt.Errorf("calculation `%s` doesn't exist", name)
	}

	if err != nil {
		return fmt.Errorf("%s: New: %w", name, err)
	}

	err = cal.Start()
	if err != nil {
		return fmt.Errorf("%s: Start: %w", name, err)
	}

	return nil
}
