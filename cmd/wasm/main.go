//go:build js && wasm

package main

import (
	"context"
	"syscall/js"

	"demosaic/pkg/demosaic"
	"demosaic/pkg/rawio"
)

var (
	lastImage   *demosaic.RGBImage
	lastPattern demosaic.CFAPattern
)

func main() {
	js.Global().Set("demosaicFITS", js.FuncOf(demosaicFITS))
	js.Global().Set("renderPreview", js.FuncOf(renderPreview))
	select {} // block forever
}

func demosaicFITS(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("usage: demosaicFITS(fileBytes, options)")
	}

	jsBytes := args[0]
	length := jsBytes.Get("length").Int()
	fileBytes := make([]byte, length)
	js.CopyBytesToGo(fileBytes, jsBytes)

	fitsData, err := rawio.ReadFitsFromBytes(fileBytes)
	if err != nil {
		return errorResult("FITS parse error: " + err.Error())
	}

	pattern, ok := fitsData.Metadata.BayerPattern()
	if !ok {
		pattern = demosaic.RGGB
	}
	strategy := demosaic.DefaultStrategy()
	if len(args) >= 2 && args[1].Type() == js.TypeObject {
		if cfa := args[1].Get("cfa"); cfa.Type() == js.TypeString {
			p, err := demosaic.ParseCFAPattern(cfa.String())
			if err != nil {
				return errorResult(err.Error())
			}
			pattern = p
		}
		if workers := args[1].Get("workers"); workers.Type() == js.TypeNumber {
			strategy.Workers = workers.Int()
		}
	}

	img, err := demosaic.DemosaicContext(context.Background(), fitsData.Raw, pattern, strategy)
	if err != nil {
		return errorResult("Demosaic error: " + err.Error())
	}
	lastImage = img
	lastPattern = pattern

	channels := map[string]interface{}{}
	for _, c := range demosaic.Channels {
		st := demosaic.ChannelStatistics(img, c, nil, demosaic.StatAll)
		channels[c.String()] = map[string]interface{}{
			"median":   st.Median,
			"mad":      st.MAD,
			"mean":     st.Mean,
			"stddev":   st.StdDev,
			"min":      int(st.Min),
			"max":      int(st.Max),
			"negative": int(st.NegativeCount),
		}
	}

	return js.ValueOf(map[string]interface{}{
		"width":    img.Width,
		"height":   img.Height,
		"pattern":  pattern.String(),
		"channels": channels,
	})
}

func renderPreview(this js.Value, args []js.Value) interface{} {
	if lastImage == nil {
		return js.Null()
	}

	opts := rawio.DefaultPreviewOptions()
	opts.Pattern = lastPattern
	jpegBytes, err := rawio.RenderPreviewBytes(lastImage, opts)
	if err != nil {
		return js.Null()
	}

	uint8Array := js.Global().Get("Uint8Array").New(len(jpegBytes))
	js.CopyBytesToJS(uint8Array, jpegBytes)
	return uint8Array
}

func errorResult(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{
		"error": msg,
	})
}
