package images

import (
	"bytes"
	"context"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector returns a flat colored JPEG for every query
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) FetchImage(ctx context.Context, query string) ([]byte, error) {
	ctxzap.Info(ctx, "[MOCK] fetching image", zap.String("query", query))

	img := imaging.New(800, 450, color.NRGBA{R: 52, G: 152, B: 219, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, image.Image(img), imaging.JPEG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
