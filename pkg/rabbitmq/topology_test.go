package rabbitmq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopologyDeadLetterNames(t *testing.T) {
	assert.Equal(t, "videoflix_exchange_dlx", TranscodeTopology.dlx())
	assert.Equal(t, "video_transcode_queue_dlq", TranscodeTopology.dlq())
	assert.Equal(t, "dlq.video.transcode.request", TranscodeTopology.dlqRouting())

	assert.Equal(t, "video_thumbnail_queue_dlq", ThumbnailTopology.dlq())
	assert.Equal(t, "dlq.video.thumbnail.request", ThumbnailTopology.dlqRouting())
}
