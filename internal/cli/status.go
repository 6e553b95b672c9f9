package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/NikitaCOEUR/snipcomplete/internal/config"
	"github.com/NikitaCOEUR/snipcomplete/internal/status"
)

// Status shows the effective configuration and probes the hint service
func Status(ctx context.Context, params Params, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}

	s, err := load(params)
	if err != nil {
		return err
	}

	data := status.Collect(ctx, s.cfg, config.Resolve(params.ConfigPath), nil)
	_, err = fmt.Fprintln(out, status.Render(data))
	return err
}
