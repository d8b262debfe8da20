package reformulator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Adithya-Monish-Kumar-K/query-reformulator/internal/sink"
	apperrors "github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/errors"
)

// RunFile reformulates inputPath into out. out is expected to already hold
// the output file, which is why it is opened by the caller before the input.
func (r *Reformulator) RunFile(ctx context.Context, inputPath string, out sink.Sink) (Stats, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Stats{}, apperrors.Newf(apperrors.ErrInputNotFound, apperrors.ExitInput, "%s", inputPath)
		}
		return Stats{}, fmt.Errorf("opening input %s: %w", inputPath, err)
	}
	defer f.Close()
	return r.Run(ctx, f, out)
}
