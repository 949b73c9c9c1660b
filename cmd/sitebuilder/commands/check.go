package commands

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/sitebuilder/internal/linkcheck"
)

// CheckCmd implements the 'check' command: verify that every internal link
// in the built output resolves the way the preview server would serve it.
type CheckCmd struct{}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	out := cfg.OutputDir()
	if _, err := os.Stat(out); os.IsNotExist(err) {
		return fmt.Errorf("output directory %s does not exist, run 'sitebuilder build' first", out)
	}

	fmt.Printf("Checking internal links in %s\n", out)
	broken, err := linkcheck.New(out, cfg.Server.IndexName).Run()
	if err != nil {
		return err
	}

	if len(broken) == 0 {
		fmt.Println("All internal links resolve")
		return nil
	}
	for _, b := range broken {
		fmt.Println(b.String())
	}
	return fmt.Errorf("%d broken internal links", len(broken))
}
