package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"infograph/internal/config"
	"infograph/internal/domain"
	"infograph/internal/port"
	"infograph/internal/service"
	"infograph/mocks"
)

func testVisionConfig() *config.VisionConfig {
	return &config.VisionConfig{
		APIKey:            "sk-test-key-long-enough",
		Model:             "gpt-4o",
		IdentificationTTL: 3600,
	}
}

func TestIdentify_NotConfigured(t *testing.T) {
	svc := service.NewIdentificationService(nil, nil, nil, &config.VisionConfig{})

	_, err := svc.Identify(context.Background(), service.IdentifyInput{FileID: uuid.New(), Page: 1})
	assert.ErrorIs(t, err, domain.ErrVisionNotConfigured)
}

func TestIdentify_Success(t *testing.T) {
	fileID := uuid.New()
	pages := new(mocks.MockPageSource)
	pages.On("Fetch", mock.Anything, fileID, 2).Return(
		&port.PageImage{Data: []byte("img"), ContentType: "image/png"}, nil)

	model := new(mocks.MockVisionModel)
	model.On("Complete", mock.Anything, mock.Anything).Return(
		"```json\n{\"detected_items\":[{\"type\":\"bar_chart\",\"title\":\"Sales\",\"bbox\":{\"x\":10,\"y\":10,\"width\":200,\"height\":100},\"confidence\":0.9}],\"image_width\":640,\"image_height\":480}\n```", nil)

	store := new(mocks.MockIdentificationStore)
	store.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := service.NewIdentificationService(pages, model, store, testVisionConfig())
	ident, err := svc.Identify(context.Background(), service.IdentifyInput{FileID: fileID, Page: 2})
	require.NoError(t, err)

	assert.Contains(t, ident.ID, "ident-")
	assert.Equal(t, fileID, ident.Source.FileID)
	assert.Equal(t, 2, ident.Source.Page)
	assert.Equal(t, domain.ImageDimensions{Width: 640, Height: 480}, ident.ImageDimensions)
	assert.Equal(t, ident.CreatedAt.Add(time.Hour), ident.ExpiresAt)

	require.Len(t, ident.Items, 1)
	item := ident.Items[0]
	assert.Equal(t, "item-1", item.ItemID)
	assert.Equal(t, domain.ElementBarChart, item.Kind)
	assert.Equal(t, "Sales", item.Title)
	assert.Equal(t, 0.9, item.Confidence)
	assert.NotNil(t, item.Warnings)
	store.AssertCalled(t, "Put", mock.Anything, ident)
}

func TestIdentify_SequentialItemIDs(t *testing.T) {
	pages := new(mocks.MockPageSource)
	pages.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return(
		&port.PageImage{Data: []byte("img"), ContentType: "image/png"}, nil)

	model := new(mocks.MockVisionModel)
	model.On("Complete", mock.Anything, mock.Anything).Return(
		`{"detected_items":[{"type":"table"},{"type":"pie_chart"},{"type":"kpi_panel"}],"image_width":800,"image_height":600}`, nil)

	store := new(mocks.MockIdentificationStore)
	store.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := service.NewIdentificationService(pages, model, store, testVisionConfig())
	ident, err := svc.Identify(context.Background(), service.IdentifyInput{FileID: uuid.New(), Page: 1})
	require.NoError(t, err)

	require.Len(t, ident.Items, 3)
	assert.Equal(t, "item-1", ident.Items[0].ItemID)
	assert.Equal(t, "item-2", ident.Items[1].ItemID)
	assert.Equal(t, "item-3", ident.Items[2].ItemID)
}

func TestIdentify_DefaultsAndClamping(t *testing.T) {
	pages := new(mocks.MockPageSource)
	pages.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return(
		&port.PageImage{Data: []byte("img"), ContentType: "image/png"}, nil)

	// No dimensions, no bbox extents, no confidence, unknown type, and a
	// box poking outside the default canvas.
	model := new(mocks.MockVisionModel)
	model.On("Complete", mock.Anything, mock.Anything).Return(
		`{"detected_items":[
			{"type":"hologram","bbox":{"x":950,"y":750}},
			{"type":"line_chart","bbox":{"x":-5,"y":-5,"width":100,"height":100},"confidence":1.7}
		]}`, nil)

	store := new(mocks.MockIdentificationStore)
	store.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := service.NewIdentificationService(pages, model, store, testVisionConfig())
	ident, err := svc.Identify(context.Background(), service.IdentifyInput{FileID: uuid.New(), Page: 1})
	require.NoError(t, err)

	assert.Equal(t, domain.ImageDimensions{Width: 1000, Height: 800}, ident.ImageDimensions)

	first := ident.Items[0]
	assert.Equal(t, domain.ElementOther, first.Kind)
	assert.Equal(t, 0.5, first.Confidence)
	// 100x100 default extents clamped to the canvas edge.
	assert.Equal(t, domain.BoundingBox{X: 950, Y: 750, Width: 50, Height: 50}, first.BoundingBox)

	second := ident.Items[1]
	assert.Equal(t, 1.0, second.Confidence)
	assert.Equal(t, 0, second.BoundingBox.X)
	assert.Equal(t, 0, second.BoundingBox.Y)
}

func TestIdentify_SingleModelCallNoRetry(t *testing.T) {
	pages := new(mocks.MockPageSource)
	pages.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return(
		&port.PageImage{Data: []byte("img"), ContentType: "image/png"}, nil)

	model := new(mocks.MockVisionModel)
	model.On("Complete", mock.Anything, mock.Anything).Return("", assert.AnError)

	store := new(mocks.MockIdentificationStore)

	svc := service.NewIdentificationService(pages, model, store, testVisionConfig())
	_, err := svc.Identify(context.Background(), service.IdentifyInput{FileID: uuid.New(), Page: 1})
	assert.Error(t, err)
	model.AssertNumberOfCalls(t, "Complete", 1)
	store.AssertNotCalled(t, "Put")
}
