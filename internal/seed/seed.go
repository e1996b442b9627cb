package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wedlii/wedbot/internal/vendors"
	"github.com/wedlii/wedbot/internal/wellness"
)

// File is the on-disk fixture format.
type File struct {
	Wellness []wellness.Item  `yaml:"wellness"`
	Vendors  []vendors.Vendor `yaml:"vendors"`
}

type Result struct {
	Wellness int
	Vendors  int
}

func Parse(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("decode seed file: %w", err)
	}
	return f, nil
}

func LoadFile(path string) (File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("open seed file: %w", err)
	}
	defer fh.Close()
	return Parse(fh)
}

type WellnessWriter interface {
	Add(ctx context.Context, item wellness.Item) (wellness.Item, error)
}

type VendorWriter interface {
	AddVendor(ctx context.Context, v vendors.Vendor) (vendors.Vendor, error)
}

// Apply upserts every fixture. It stops at the first failing entry.
func Apply(ctx context.Context, f File, w WellnessWriter, v VendorWriter, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var res Result
	for i, item := range f.Wellness {
		if _, err := w.Add(ctx, item); err != nil {
			return res, fmt.Errorf("seed wellness[%d]: %w", i, err)
		}
		res.Wellness++
	}
	for i, vendor := range f.Vendors {
		if _, err := v.AddVendor(ctx, vendor); err != nil {
			return res, fmt.Errorf("seed vendors[%d] %q: %w", i, vendor.Name, err)
		}
		res.Vendors++
	}
	logger.Info("seed applied", zap.Int("wellness", res.Wellness), zap.Int("vendors", res.Vendors))
	return res, nil
}
