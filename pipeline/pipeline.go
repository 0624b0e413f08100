package pipeline

import (
	"context"
	"time"
)

// TextUnit is one speakable sentence extracted from a section's translated
// content. DisplayPercentage is the unit's normalized start position within
// the original text.
type TextUnit struct {
	Order             int
	Text              string
	DisplayPercentage float64
}

// AudioSegment is one persisted narrated unit.
type AudioSegment struct {
	Position   int
	FileID     string
	DurationMs int
}

// SceneFrame is one persisted illustration pinned to a normalized position.
// Position is the originating paragraph index; frames are uniquely keyed by
// (section, position) so re-runs resume instead of duplicating work.
type SceneFrame struct {
	Position          int
	FileID            string
	DisplayPercentage float64
}

// TimelineEntry pairs the end boundary of an audio segment with the frame
// displayed up to that boundary.
type TimelineEntry struct {
	BoundaryMs  int
	FrameFileID string
}

// SceneDescription is an LLM-produced visual description of one unit.
type SceneDescription struct {
	Text              string
	Description       string
	DisplayPercentage float64
}

// GeneratedImage holds the raw bytes returned by the image provider before
// they are persisted as a SceneFrame.
type GeneratedImage struct {
	SectionID         string
	Position          int
	Prompt            string
	DisplayPercentage float64
	ImageData         []byte
}

// FileAsset is the metadata stored alongside an object-storage upload.
type FileAsset struct {
	ID       string
	Name     string
	Size     int64
	MimeType string
}

// VideoAsset is the final registered video row.
type VideoAsset struct {
	SectionID      string
	LanguageID     string
	CefrLevel      string
	FileID         string
	HostAssetID    string
	HostPlaybackID string
}

// Store is the persistence the pipeline needs: ordered segment and frame
// reads, transactional writes. Audio segments are uniquely keyed by
// (section, language, level, position) so re-runs resume instead of
// duplicating work.
type Store interface {
	GetTranslation(ctx context.Context, sectionID, languageID, cefrLevel string) (string, error)
	HasAudioSegment(ctx context.Context, sectionID, languageID, cefrLevel string, position int) (bool, error)
	CreateAudioSegment(ctx context.Context, sectionID, languageID, cefrLevel string, seg AudioSegment, asset FileAsset) error
	ListAudioSegments(ctx context.Context, sectionID, languageID, cefrLevel string) ([]AudioSegment, error)
	HasSceneFrame(ctx context.Context, sectionID string, position int) (bool, error)
	CreateSceneFrame(ctx context.Context, sectionID string, frame SceneFrame, asset FileAsset) error
	ListSceneFrames(ctx context.Context, sectionID string) ([]SceneFrame, error)
	CreateSectionVideo(ctx context.Context, video VideoAsset) error
}

// ObjectStore is the object-storage collaborator. Put returns the opaque
// file reference later handed to Download and PresignedURL.
type ObjectStore interface {
	Put(ctx context.Context, data []byte, name, contentType string) (string, error)
	Download(ctx context.Context, fileRef, localPath string) error
	PresignedURL(ctx context.Context, fileRef string, ttl time.Duration) (string, error)
}

// SpeechSynthesizer turns one unit of text into audio bytes. Previous and
// next unit text is passed along so the provider can smooth prosody across
// unit boundaries.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, previousText, nextText string) ([]byte, error)
}

// Completer is the LLM collaborator: system + user prompt in, raw model
// output out. The caller validates the output shape.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type JobState string

const (
	JobPending   JobState = "pending"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// ImageJob is one poll observation of an asynchronous image generation job.
// Providers return either a fetchable URL or inline bytes on success.
type ImageJob struct {
	State      JobState
	ResultURL  string
	ResultData []byte
	Err        string
}

type ImageGenerator interface {
	Submit(ctx context.Context, prompt string) (jobID string, err error)
	Poll(ctx context.Context, jobID string) (ImageJob, error)
}

// HostAsset identifies a video registered with the hosting collaborator.
type HostAsset struct {
	AssetID    string
	PlaybackID string
}

// VideoHost ingests a video from a URL and transcodes it; CreateAsset blocks
// (with bounded polling) until the asset is playable or errored.
type VideoHost interface {
	CreateAsset(ctx context.Context, sourceURL, languageID string) (HostAsset, error)
}

// Runner invokes the local media toolchain as a subprocess.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// DurationProber measures the exact playable duration of an audio file by
// decoding it, not by estimating from byte size.
type DurationProber interface {
	DurationMs(ctx context.Context, path string) (int, error)
}

// HTTPFetcher downloads bytes from a URL (image results returned by URL).
type HTTPFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Options carries the per-run tunables; zero values fall back to the
// defaults used by the original generation scripts.
type Options struct {
	PollInterval      time.Duration
	PollMaxAttempts   int
	RenderParallelism int // 0 = NumCPU
	ScratchDir        string
	PresignTTL        time.Duration
}

// Deps bundles the collaborators a Pipeline needs.
type Deps struct {
	Store   Store
	Objects ObjectStore
	TTS     SpeechSynthesizer
	LLM     Completer
	Images  ImageGenerator
	Host    VideoHost
	Runner  Runner
	Prober  DurationProber
	Fetcher HTTPFetcher
	Gate    *Gate
}

// Pipeline sequences narration, scene, image and stitching stages for one
// (section, language, level) triple per invocation.
type Pipeline struct {
	store   Store
	objects ObjectStore
	tts     SpeechSynthesizer
	llm     Completer
	images  ImageGenerator
	host    VideoHost
	runner  Runner
	prober  DurationProber
	fetcher HTTPFetcher
	gate    *Gate
	opts    Options
}

func New(deps Deps, opts Options) *Pipeline {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.PollMaxAttempts <= 0 {
		opts.PollMaxAttempts = 60
	}
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = time.Hour
	}
	if deps.Gate == nil {
		deps.Gate = NewGate(2)
	}
	return &Pipeline{
		store:   deps.Store,
		objects: deps.Objects,
		tts:     deps.TTS,
		llm:     deps.LLM,
		images:  deps.Images,
		host:    deps.Host,
		runner:  deps.Runner,
		prober:  deps.Prober,
		fetcher: deps.Fetcher,
		gate:    deps.Gate,
		opts:    opts,
	}
}
