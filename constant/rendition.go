package constant

// Rendition describes one HLS output variant produced from a source video.
type Rendition struct {
	Label      string // e.g. "480p", used in playlist filenames
	Scale      string // ffmpeg -s size token
	VideoCodec string
	AudioCodec string
	CRF        string // constant-quality level
}

// Renditions is the fixed set of variants produced for every upload,
// in enqueue order.
var Renditions = []Rendition{
	{Label: "480p", Scale: "hd480", VideoCodec: "libx264", AudioCodec: "aac", CRF: "23"},
	{Label: "720p", Scale: "hd720", VideoCodec: "libx264", AudioCodec: "aac", CRF: "23"},
	{Label: "1080p", Scale: "hd1080", VideoCodec: "libx264", AudioCodec: "aac", CRF: "23"},
}

func RenditionByLabel(label string) (Rendition, bool) {
	for _, r := range Renditions {
		if r.Label == label {
			return r, true
		}
	}
	return Rendition{}, false
}
