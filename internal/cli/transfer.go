package cli

import (
	"github.com/julianstephens/habitual/internal/transfer"
)

type ExportCmd struct {
	Path     string `arg:"" type:"path" help:"Destination file; .yaml or .yml writes YAML, anything else JSON."`
	Extended bool   `short:"x" help:"Include ids, progress history and settings."`
}

func (c *ExportCmd) Run(ctx *Context) error {
	h, err := ctx.Session()
	if err != nil {
		return err
	}
	n, err := h.Export(c.Path, transfer.ExportOptions{Extended: c.Extended})
	if err != nil {
		return err
	}
	ctx.printf("✓ Exported %s to %s\n", pluralize(n, "habit"), c.Path)
	return nil
}

type ImportCmd struct {
	Path string `arg:"" type:"existingfile" help:"JSON or YAML file to import habits from."`
}

func (c *ImportCmd) Run(ctx *Context) error {
	h, err := ctx.Session()
	if err != nil {
		return err
	}
	res, err := h.Import(c.Path)
	if err != nil {
		return err
	}

	ctx.printf("✓ Imported %s", pluralize(res.Imported, "habit"))
	if res.Skipped > 0 {
		ctx.printf(", skipped %d", res.Skipped)
	}
	ctx.println()
	if len(res.Problems) > 0 {
		s := stylesFor(ctx.theme(h.UserID()))
		for _, p := range res.Problems {
			ctx.printf("  %s %v\n", s.warn.Render("!"), p)
		}
	}
	return nil
}
