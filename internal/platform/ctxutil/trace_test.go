package ctxutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceDataRoundTrip(t *testing.T) {
	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t1", RequestID: "r1"})
	td := GetTraceData(ctx)
	if assert.NotNil(t, td) {
		assert.Equal(t, "t1", td.TraceID)
		assert.Equal(t, "r1", td.RequestID)
	}
	assert.Nil(t, GetTraceData(context.Background()))
}
