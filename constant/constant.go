package constant

type JobType string

const (
	JobTypeTranscode JobType = "transcode"
	JobTypeThumbnail JobType = "thumbnail"
)

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}

type Category string

const (
	CategoryDrama       Category = "drama"
	CategoryDocumentary Category = "documentary"
	CategoryRomance     Category = "romance"
	CategoryComedy      Category = "comedy"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryDrama, CategoryDocumentary, CategoryRomance, CategoryComedy:
		return true
	}
	return false
}

const (
	ContentTypePlaylist = "application/vnd.apple.mpegurl"
	ContentTypeSegment  = "video/MP2T"
)
