package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"infograph/internal/domain"
	"infograph/internal/port"
	"infograph/internal/service"
	"infograph/mocks"
)

func testPolicy() service.RetryPolicy {
	return service.RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}
}

func testImage() *port.PageImage {
	return &port.PageImage{Data: []byte("png-bytes"), ContentType: "image/png"}
}

func testPlan(items ...domain.PlannedItem) *service.ExtractionPlan {
	return &service.ExtractionPlan{
		Identification: testIdentification(),
		Items:          items,
	}
}

func plannedItem(id string) domain.PlannedItem {
	return domain.PlannedItem{
		ItemID:      id,
		Kind:        domain.ElementBarChart,
		Title:       "Chart " + id,
		BoundingBox: domain.BoundingBox{X: 0, Y: 0, Width: 100, Height: 100},
		Confidence:  0.9,
	}
}

func promptFor(itemID string) interface{} {
	return mock.MatchedBy(func(input port.CompletionInput) bool {
		return strings.Contains(input.Prompt, `"item_id": "`+itemID+`"`)
	})
}

func TestExecute_SingleItemSuccess(t *testing.T) {
	model := new(mocks.MockVisionModel)
	model.On("Complete", mock.Anything, promptFor("item-1")).Return(
		`{"item_id":"item-1","title":"Sales","columns":["Region","Value"],"rows":[{"Region":"North","Value":100}],"confidence":0.92,"notes":"clean chart"}`,
		nil)

	e := service.NewExecutor(model, testPolicy())
	result, err := e.Execute(context.Background(), testImage(), testPlan(plannedItem("item-1")), domain.ExtractionOptions{Granularity: domain.GranularityFull})
	require.NoError(t, err)
	require.Len(t, result.Datasets, 1)
	assert.Empty(t, result.Failures)

	ds := result.Datasets[0]
	assert.True(t, strings.HasPrefix(ds.ID, "ds-"))
	assert.Equal(t, "item-1", ds.SourceItemID)
	assert.Equal(t, "Sales", ds.Title)
	assert.Equal(t, []string{"Region", "Value"}, ds.Columns)
	assert.Equal(t, 0.92, ds.Metadata.Confidence)
	assert.Equal(t, "clean chart", ds.Metadata.Notes)
	require.NotNil(t, ds.Metadata.SourceBoundingBox)
}

func TestExecute_PartialSuccess(t *testing.T) {
	model := new(mocks.MockVisionModel)
	model.On("Complete", mock.Anything, promptFor("item-1")).Return(
		`{"item_id":"item-1","columns":["A"],"rows":[{"A":1}]}`, nil)
	model.On("Complete", mock.Anything, promptFor("item-2")).Return(
		"", errors.New("model unavailable"))

	e := service.NewExecutor(model, testPolicy())
	result, err := e.Execute(context.Background(), testImage(),
		testPlan(plannedItem("item-1"), plannedItem("item-2")), domain.ExtractionOptions{})
	require.NoError(t, err)

	require.Len(t, result.Datasets, 1)
	assert.Equal(t, "item-1", result.Datasets[0].SourceItemID)

	require.Len(t, result.Failures, 1)
	failure := result.Failures[0]
	assert.Equal(t, "item-2", failure.ItemID)
	assert.Equal(t, 3, failure.Attempts)
	assert.Contains(t, failure.Error, "model unavailable")
}

func TestExecute_AllItemsFail(t *testing.T) {
	model := new(mocks.MockVisionModel)
	model.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("down"))

	e := service.NewExecutor(model, testPolicy())
	_, err := e.Execute(context.Background(), testImage(),
		testPlan(plannedItem("item-1"), plannedItem("item-2")), domain.ExtractionOptions{})

	var extractErr *service.ExtractionFailedError
	require.ErrorAs(t, err, &extractErr)
	assert.Len(t, extractErr.Failures, 2)
}

func TestExecute_RetryRecovers(t *testing.T) {
	model := new(mocks.MockVisionModel)
	model.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("flaky")).Once()
	model.On("Complete", mock.Anything, mock.Anything).Return(
		`{"item_id":"item-1","columns":["A"],"rows":[{"A":1}]}`, nil).Once()

	e := service.NewExecutor(model, testPolicy())
	result, err := e.Execute(context.Background(), testImage(), testPlan(plannedItem("item-1")), domain.ExtractionOptions{})
	require.NoError(t, err)
	assert.Len(t, result.Datasets, 1)
	assert.Empty(t, result.Failures)
	model.AssertNumberOfCalls(t, "Complete", 2)
}

func TestExecute_EmptyRowsAreAFailure(t *testing.T) {
	model := new(mocks.MockVisionModel)
	model.On("Complete", mock.Anything, mock.Anything).Return(
		`{"item_id":"item-1","columns":["A"],"rows":[]}`, nil)

	e := service.NewExecutor(model, testPolicy())
	_, err := e.Execute(context.Background(), testImage(), testPlan(plannedItem("item-1")), domain.ExtractionOptions{})

	var extractErr *service.ExtractionFailedError
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, 3, extractErr.Failures[0].Attempts)
}

func TestExecute_ContextCancelledBetweenItems(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	model := new(mocks.MockVisionModel)
	model.On("Complete", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		cancel()
	}).Return(`{"item_id":"item-1","columns":["A"],"rows":[{"A":1}]}`, nil)

	e := service.NewExecutor(model, testPolicy())
	_, err := e.Execute(ctx, testImage(),
		testPlan(plannedItem("item-1"), plannedItem("item-2")), domain.ExtractionOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecute_FullWithSourceNormalization(t *testing.T) {
	model := new(mocks.MockVisionModel)
	model.On("Complete", mock.Anything, mock.Anything).Return(
		`{"item_id":"item-1","columns":["Month","Value","source"],"rows":[
			{"Month":"Jan","Value":10,"source":"Annotated"},
			{"Month":"Feb","Value":12,"source":"axis-read"},
			{"Month":"Mar","Value":14}
		]}`, nil)

	e := service.NewExecutor(model, testPolicy())
	result, err := e.Execute(context.Background(), testImage(), testPlan(plannedItem("item-1")),
		domain.ExtractionOptions{Granularity: domain.GranularityFullWithSource})
	require.NoError(t, err)

	ds := result.Datasets[0]
	assert.Contains(t, ds.Columns, domain.SourceColumn)
	assert.Equal(t, domain.SourceAnnotated, ds.Rows[0][domain.SourceColumn])
	assert.Equal(t, domain.SourceEstimated, ds.Rows[1][domain.SourceColumn])
	assert.Equal(t, domain.SourceEstimated, ds.Rows[2][domain.SourceColumn])
}

func TestExecute_SourceColumnDroppedWithoutSourceGranularity(t *testing.T) {
	model := new(mocks.MockVisionModel)
	model.On("Complete", mock.Anything, mock.Anything).Return(
		`{"item_id":"item-1","columns":["A","source"],"rows":[{"A":1,"source":"annotated"}]}`, nil)

	e := service.NewExecutor(model, testPolicy())
	result, err := e.Execute(context.Background(), testImage(), testPlan(plannedItem("item-1")),
		domain.ExtractionOptions{Granularity: domain.GranularityFull})
	require.NoError(t, err)

	ds := result.Datasets[0]
	assert.NotContains(t, ds.Columns, domain.SourceColumn)
	_, present := ds.Rows[0][domain.SourceColumn]
	assert.False(t, present)
}

func TestExecute_MissingCellsBecomeEmptyStrings(t *testing.T) {
	model := new(mocks.MockVisionModel)
	model.On("Complete", mock.Anything, mock.Anything).Return(
		`{"item_id":"item-1","columns":["A","B"],"rows":[{"A":1},{"A":2,"B":"x"}]}`, nil)

	e := service.NewExecutor(model, testPolicy())
	result, err := e.Execute(context.Background(), testImage(), testPlan(plannedItem("item-1")), domain.ExtractionOptions{})
	require.NoError(t, err)

	rows := result.Datasets[0].Rows
	assert.Equal(t, "", rows[0]["B"])
	assert.Equal(t, "x", rows[1]["B"])
}

func TestExecute_UndeclaredRowKeysBecomeColumns(t *testing.T) {
	model := new(mocks.MockVisionModel)
	model.On("Complete", mock.Anything, mock.Anything).Return(
		`{"item_id":"item-1","columns":["A"],"rows":[{"A":1,"Extra":"v"}]}`, nil)

	e := service.NewExecutor(model, testPolicy())
	result, err := e.Execute(context.Background(), testImage(), testPlan(plannedItem("item-1")), domain.ExtractionOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "Extra"}, result.Datasets[0].Columns)
}

func TestExecute_WrappedExtractionsReply(t *testing.T) {
	model := new(mocks.MockVisionModel)
	model.On("Complete", mock.Anything, mock.Anything).Return(
		`{"extractions":[{"item_id":"item-1","columns":["A"],"rows":[{"A":1}]}]}`, nil)

	e := service.NewExecutor(model, testPolicy())
	result, err := e.Execute(context.Background(), testImage(), testPlan(plannedItem("item-1")), domain.ExtractionOptions{})
	require.NoError(t, err)
	assert.Len(t, result.Datasets, 1)
}

func TestExecute_ConfidenceDefaultsWhenOmitted(t *testing.T) {
	model := new(mocks.MockVisionModel)
	model.On("Complete", mock.Anything, mock.Anything).Return(
		`{"item_id":"item-1","columns":["A"],"rows":[{"A":1}]}`, nil)

	e := service.NewExecutor(model, testPolicy())
	result, err := e.Execute(context.Background(), testImage(), testPlan(plannedItem("item-1")), domain.ExtractionOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0.8, result.Datasets[0].Metadata.Confidence)
}

func TestExecute_MergeDatasets(t *testing.T) {
	model := new(mocks.MockVisionModel)
	model.On("Complete", mock.Anything, promptFor("item-1")).Return(
		`{"item_id":"item-1","title":"Alpha","columns":["X"],"rows":[{"X":1}],"confidence":0.9}`, nil)
	model.On("Complete", mock.Anything, promptFor("item-2")).Return(
		`{"item_id":"item-2","title":"Beta","columns":["Y"],"rows":[{"Y":2}],"confidence":0.7}`, nil)

	e := service.NewExecutor(model, testPolicy())
	result, err := e.Execute(context.Background(), testImage(),
		testPlan(plannedItem("item-1"), plannedItem("item-2")),
		domain.ExtractionOptions{MergeDatasets: true})
	require.NoError(t, err)

	require.Len(t, result.Datasets, 1)
	merged := result.Datasets[0]
	assert.Equal(t, "Merged extraction", merged.Title)
	assert.Equal(t, domain.ElementOther, merged.Kind)
	assert.Empty(t, merged.SourceItemID)
	assert.Equal(t, []string{"Source", "Category", "X", "Y"}, merged.Columns)
	require.Len(t, merged.Rows, 2)
	assert.Equal(t, "Alpha", merged.Rows[0]["Source"])
	assert.Equal(t, "Beta", merged.Rows[1]["Source"])
	assert.Equal(t, "", merged.Rows[0]["Y"])
	assert.InDelta(t, 0.8, merged.Metadata.Confidence, 1e-9)
}

func TestExecute_MergeSkippedForSingleDataset(t *testing.T) {
	model := new(mocks.MockVisionModel)
	model.On("Complete", mock.Anything, mock.Anything).Return(
		`{"item_id":"item-1","columns":["A"],"rows":[{"A":1}]}`, nil)

	e := service.NewExecutor(model, testPolicy())
	result, err := e.Execute(context.Background(), testImage(), testPlan(plannedItem("item-1")),
		domain.ExtractionOptions{MergeDatasets: true})
	require.NoError(t, err)
	require.Len(t, result.Datasets, 1)
	assert.Equal(t, "item-1", result.Datasets[0].SourceItemID)
}
