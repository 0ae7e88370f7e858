package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/soypat/pixfx"
	"github.com/soypat/pixfx/effects"
	"github.com/soypat/pixfx/filters"
	"github.com/soypat/pixfx/imageio"
)

// Export renders src with p at full resolution and hands the result to
// sink under the suggested name. The render result is returned so callers
// can reuse its image and histogram. Any sink failure is reported wrapping
// [pixfx.ErrPersistence]; it is not retried.
func Export(ctx context.Context, sink imageio.Sink, src *pixfx.Buffer, p effects.Params, name string, ap Applier) (location string, res Result, err error) {
	if sink == nil {
		return "", Result{}, fmt.Errorf("%w: nil sink", pixfx.ErrPersistence)
	}
	res, err = Render(src, p, ap)
	if err != nil {
		return "", Result{}, err
	}
	location, err = sink.Save(ctx, res.Image, name)
	if err != nil {
		return "", res, fmt.Errorf("%w: %w", pixfx.ErrPersistence, err)
	}
	return location, res, nil
}

// Thumbnails renders every preset at full intensity on a copy of src
// downscaled to maxDim. Thumbnails are rendered concurrently; the result
// order matches presets.
func Thumbnails(ctx context.Context, src *pixfx.Buffer, presets []effects.Preset, maxDim int) ([]*pixfx.Buffer, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", pixfx.ErrInvalidBuffer)
	}
	small := imageio.Downscale(src, maxDim)
	thumbs := make([]*pixfx.Buffer, len(presets))
	errs := make([]error, len(presets))
	tf := filters.Transformer{Workers: 1}
	var wg sync.WaitGroup
	for i, preset := range presets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			p := effects.DefaultParams()
			p.Preset = preset
			thumbs[i], errs[i] = tf.Apply(small, effects.Compose(p))
		}()
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("thumbnail %q: %w", presets[i].Name, err)
		}
	}
	return thumbs, nil
}
