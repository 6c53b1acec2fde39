package detector

import (
	"context"

	"github.com/example/authguard/internal/media"
)

// Report is a media-specific analysis verdict. The set of implementations is
// closed: ImageReport, VideoReport, AudioReport and TextReport.
type Report interface {
	Media() media.Category
	// Trustworthy is the authentic (image, video, audio) or credible (text) verdict.
	Trustworthy() bool
	Score() float64
	isReport()
}

// Progress describes how far an incremental analysis has advanced.
type Progress struct {
	Frames      int     `json:"frames"`
	TotalFrames int     `json:"totalFrames"`
	Percent     float64 `json:"percent"`
}

// ProgressFunc receives progress updates from a generator. It may be nil.
type ProgressFunc func(Progress)

// Generator produces a report for an artifact. Implementations must return
// promptly with ctx.Err() once ctx is cancelled.
type Generator interface {
	Name() string
	Media() media.Category
	Generate(ctx context.Context, artifact media.Artifact, progress ProgressFunc) (Report, error)
}

type ImageDetails struct {
	Faces         int      `json:"faces"`
	Manipulations []string `json:"manipulations"`
	AIGenerated   bool     `json:"aiGenerated"`
}

type ImageReport struct {
	Authentic  bool         `json:"authentic"`
	Confidence float64      `json:"confidence"`
	Details    ImageDetails `json:"details"`
}

type VideoDetails struct {
	FramesAnalyzed         int      `json:"framesAnalyzed"`
	FaceSwapDetected       bool     `json:"faceSwapDetected"`
	LipSyncInconsistencies int      `json:"lipSyncInconsistencies"`
	TemporalAnomalies      []string `json:"temporalAnomalies"`
	CompressionArtifacts   bool     `json:"compressionArtifacts"`
	// Duration in seconds, present only when the media length was measured.
	Duration float64 `json:"duration,omitempty"`
}

type VideoReport struct {
	Authentic  bool         `json:"authentic"`
	Confidence float64      `json:"confidence"`
	Details    VideoDetails `json:"details"`
}

type AudioDetails struct {
	VoicePrint        string   `json:"voicePrint"`
	SpectralAnalysis  float64  `json:"spectralAnalysis"`
	ProsodyScore      float64  `json:"prosodyScore"`
	ArtificialMarkers []string `json:"artificialMarkers"`
	// Duration in seconds.
	Duration   float64 `json:"duration"`
	SampleRate int     `json:"sampleRate"`
}

type AudioReport struct {
	Authentic  bool         `json:"authentic"`
	Confidence float64      `json:"confidence"`
	Details    AudioDetails `json:"details"`
}

// Sentiment is the overall tone assigned to analysed text.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
)

type TextDetails struct {
	SourceReliability  float64  `json:"sourceReliability"`
	FactualConsistency float64  `json:"factualConsistency"`
	LanguagePatterns   []string `json:"languagePatterns"`
	SimilarSources     []string `json:"similarSources"`
	SourceURL          string   `json:"sourceUrl,omitempty"`
}

type TextReport struct {
	Credible   bool        `json:"credible"`
	Confidence float64     `json:"confidence"`
	Sentiment  Sentiment   `json:"sentiment"`
	Details    TextDetails `json:"details"`
}

func (ImageReport) Media() media.Category { return media.Image }
func (VideoReport) Media() media.Category { return media.Video }
func (AudioReport) Media() media.Category { return media.Audio }
func (TextReport) Media() media.Category  { return media.Text }

func (r ImageReport) Trustworthy() bool { return r.Authentic }
func (r VideoReport) Trustworthy() bool { return r.Authentic }
func (r AudioReport) Trustworthy() bool { return r.Authentic }
func (r TextReport) Trustworthy() bool  { return r.Credible }

func (r ImageReport) Score() float64 { return r.Confidence }
func (r VideoReport) Score() float64 { return r.Confidence }
func (r AudioReport) Score() float64 { return r.Confidence }
func (r TextReport) Score() float64  { return r.Confidence }

func (ImageReport) isReport() {}
func (VideoReport) isReport() {}
func (AudioReport) isReport() {}
func (TextReport) isReport()  {}
