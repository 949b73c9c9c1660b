package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Dir   string `short:"d" name:"dir" default:"." help:"Project directory to scaffold"`
	Force bool   `help:"Overwrite an existing configuration file"`
}

func (i *InitCmd) Run(_ *Global, _ *CLI) error {
	return RunInit(i.Dir, i.Force)
}

// RunInit scaffolds a project directory and reports progress on stdout.
func RunInit(dir string, force bool) error {
	fmt.Println("Initializing site project")
	if err := config.Init(dir, force); err != nil {
		return err
	}
	fmt.Printf("Scaffolded %s with content/, static/, styles/ and templates/\n", dir)
	fmt.Println("initialized successfully")
	return nil
}
