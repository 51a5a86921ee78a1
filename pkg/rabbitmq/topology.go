package rabbitmq

const Exchange = "videoflix_exchange"

var (
	TranscodeTopology = Topology{
		ExchangeName: Exchange,
		QueueName:    "video_transcode_queue",
		RoutingKey:   "video.transcode.request",
	}
	ThumbnailTopology = Topology{
		ExchangeName: Exchange,
		QueueName:    "video_thumbnail_queue",
		RoutingKey:   "video.thumbnail.request",
	}
)
