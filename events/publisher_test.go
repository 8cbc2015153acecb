package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyMessage_WireFormat(t *testing.T) {
	body, err := json.Marshal(PropertyMessage{Action: ActionUpdate, PropertyID: "12"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"update","property_id":"12"}`, string(body))
}

func TestRecorder(t *testing.T) {
	var r Recorder
	require.NoError(t, r.PublishProperty(context.Background(), ActionCreate, 3))
	require.NoError(t, r.PublishProperty(context.Background(), ActionDelete, 3))
	assert.Equal(t, []PropertyMessage{
		{Action: "create", PropertyID: "3"},
		{Action: "delete", PropertyID: "3"},
	}, r.Messages)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.PublishProperty(context.Background(), ActionCreate, 1))
	assert.NoError(t, p.Close())
}
