// Package epd drives physical e-paper panels through periph.io.
package epd

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"reflect"
	"sync"
	"unsafe"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/devices/v3/waveshare2in13v4"
	"periph.io/x/host/v3"
)

// device is the part of the panel driver the hat uses
type device interface {
	display.Drawer
	Init() error
	Sleep() error
}

// WaveshareHat is a canvas.Panel on a Waveshare e-paper HAT.
// Pages are staged in memory and sent in one transfer on Refresh.
type WaveshareHat struct {
	mu      sync.Mutex
	dev     device
	setMode func(partial bool) error
	port    io.Closer
	staging *image1bit.VerticalLSB
	asleep  bool
	logger  *zap.Logger
}

// OpenWaveshare2in13v4 initializes the host, opens the SPI port (empty for
// the first one) and wakes the panel.
func OpenWaveshare2in13v4(spiPort string, logger *zap.Logger) (*WaveshareHat, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize host: %w", err)
	}

	port, err := spireg.Open(spiPort)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port: %w", err)
	}

	opts := waveshare2in13v4.EPD2in13v4
	dev, err := waveshare2in13v4.NewHat(port, &opts)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to create panel driver: %w", err)
	}

	hat, err := newHat(dev, func(partial bool) error { return setDisplayMode(dev, partial) }, port, logger)
	if err != nil {
		port.Close()
		return nil, err
	}

	logger.Info("Opened e-paper panel",
		zap.String("driver", dev.String()),
		zap.String("bounds", dev.Bounds().String()))

	return hat, nil
}

func newHat(dev device, setMode func(bool) error, port io.Closer, logger *zap.Logger) (*WaveshareHat, error) {
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize panel: %w", err)
	}
	return &WaveshareHat{
		dev:     dev,
		setMode: setMode,
		port:    port,
		staging: image1bit.NewVerticalLSB(dev.Bounds()),
		logger:  logger,
	}, nil
}

func (h *WaveshareHat) Bounds() image.Rectangle {
	return h.dev.Bounds()
}

// Write stages a page
func (h *WaveshareHat) Write(r image.Rectangle, src image.Image, sp image.Point) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	draw.Draw(h.staging, r, src, sp, draw.Src)
	return nil
}

// Refresh sends the staged window and lets the controller update the glass
func (h *WaveshareHat) Refresh(partial bool, window image.Rectangle) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.asleep {
		if err := h.dev.Init(); err != nil {
			return fmt.Errorf("failed to wake panel: %w", err)
		}
		h.asleep = false
	}

	if err := h.setMode(partial); err != nil {
		h.logger.Warn("Could not switch panel refresh mode", zap.Bool("partial", partial), zap.Error(err))
	}

	window = window.Intersect(h.dev.Bounds())
	if window.Empty() {
		window = h.dev.Bounds()
	}
	if err := h.dev.Draw(window, h.staging, window.Min); err != nil {
		return fmt.Errorf("failed to draw panel: %w", err)
	}

	h.logger.Debug("Panel refreshed",
		zap.Bool("partial", partial),
		zap.String("window", window.String()))

	return nil
}

// PowerOff puts the controller into deep sleep and releases the SPI port.
// A later Refresh wakes the controller again.
func (h *WaveshareHat) PowerOff() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.asleep {
		return nil
	}
	if err := h.dev.Sleep(); err != nil {
		return fmt.Errorf("failed to put panel to sleep: %w", err)
	}
	h.asleep = true
	return nil
}

// Close halts the driver and closes the SPI port
func (h *WaveshareHat) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	err := h.dev.Halt()
	if h.port != nil {
		if cerr := h.port.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// setDisplayMode flips the driver's unexported refresh mode field; the driver
// only exposes the mode through its options at construction time.
func setDisplayMode(dev *waveshare2in13v4.Dev, partial bool) error {
	v := reflect.ValueOf(dev).Elem().FieldByName("mode")
	if !v.IsValid() || !v.CanAddr() {
		return errors.New("display mode field unavailable")
	}
	ptr := reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
	if partial {
		ptr.Set(reflect.ValueOf(waveshare2in13v4.Partial))
	} else {
		ptr.Set(reflect.ValueOf(waveshare2in13v4.Full))
	}
	return nil
}
