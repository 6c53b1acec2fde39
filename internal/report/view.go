// Package report turns analysis reports into presentation-ready views and
// user notifications. Nothing here mutates a report.
package report

import (
	"fmt"
	"strconv"

	"github.com/example/authguard/internal/detector"
	"github.com/example/authguard/internal/media"
)

// Badge is the verdict chip shown next to the headline.
type Badge struct {
	Label    string `json:"label"`
	Positive bool   `json:"positive"`
}

// Score is a bounded percentage rendered as a bar.
type Score struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Fact is a labelled scalar detail.
type Fact struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// List is an array-valued detail such as anomalies or language patterns.
type List struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// View is everything a renderer needs to draw one report.
type View struct {
	Media      media.Category `json:"media"`
	Headline   string         `json:"headline"`
	Badge      Badge          `json:"badge"`
	Confidence float64        `json:"confidence"`
	Summary    string         `json:"summary"`
	Scores     []Score        `json:"scores,omitempty"`
	Facts      []Fact         `json:"facts,omitempty"`
	Lists      []List         `json:"lists,omitempty"`
	Link       string         `json:"link,omitempty"`
}

// Build maps r onto a View.
func Build(r detector.Report) (View, error) {
	switch v := r.(type) {
	case detector.ImageReport:
		return imageView(v), nil
	case detector.VideoReport:
		return videoView(v), nil
	case detector.AudioReport:
		return audioView(v), nil
	case detector.TextReport:
		return textView(v), nil
	case nil:
		return View{}, fmt.Errorf("build view: nil report")
	default:
		return View{}, fmt.Errorf("build view: unsupported report %T", r)
	}
}

func verdictView(r detector.Report, headline [2]string, badge [2]string) View {
	idx := 1
	if r.Trustworthy() {
		idx = 0
	}
	return View{
		Media:      r.Media(),
		Headline:   headline[idx],
		Badge:      Badge{Label: badge[idx], Positive: r.Trustworthy()},
		Confidence: r.Score(),
		Summary:    confidenceText(r.Score()) + " confidence",
	}
}

func imageView(r detector.ImageReport) View {
	v := verdictView(r,
		[2]string{"Likely Authentic", "Potential Manipulation"},
		[2]string{"Authentic", "Suspicious"})
	v.Facts = []Fact{
		{Label: "Faces Detected", Value: strconv.Itoa(r.Details.Faces)},
		{Label: "Manipulations", Value: strconv.Itoa(len(r.Details.Manipulations))},
		{Label: "AI Generated", Value: yesNo(r.Details.AIGenerated)},
	}
	v.Lists = nonEmptyLists(List{Title: "Detected Issues", Items: r.Details.Manipulations})
	return v
}

func videoView(r detector.VideoReport) View {
	v := verdictView(r,
		[2]string{"Likely Authentic", "Deepfake Detected"},
		[2]string{"Authentic", "Manipulated"})
	v.Facts = []Fact{
		{Label: "Frames Analyzed", Value: strconv.Itoa(r.Details.FramesAnalyzed)},
		{Label: "Lip Sync Issues", Value: strconv.Itoa(r.Details.LipSyncInconsistencies)},
		{Label: "Face Swap", Value: yesNo(r.Details.FaceSwapDetected)},
		{Label: "Anomalies", Value: strconv.Itoa(len(r.Details.TemporalAnomalies))},
		{Label: "Compression Artifacts", Value: yesNo(r.Details.CompressionArtifacts)},
	}
	if r.Details.Duration > 0 {
		v.Facts = append(v.Facts, Fact{Label: "Duration", Value: clock(r.Details.Duration)})
	}
	v.Lists = nonEmptyLists(List{Title: "Temporal Anomalies", Items: r.Details.TemporalAnomalies})
	return v
}

func audioView(r detector.AudioReport) View {
	v := verdictView(r,
		[2]string{"Likely Human Voice", "Synthetic Audio Detected"},
		[2]string{"Authentic", "Synthetic"})
	voiceType := "Synthetic"
	if r.Authentic {
		voiceType = "Human"
	}
	v.Scores = []Score{
		{Label: "Spectral Analysis", Value: r.Details.SpectralAnalysis},
		{Label: "Prosody Score", Value: r.Details.ProsodyScore},
	}
	v.Facts = []Fact{
		{Label: "Duration", Value: clock(r.Details.Duration)},
		{Label: "Sample Rate", Value: fmt.Sprintf("%d Hz", r.Details.SampleRate)},
		{Label: "Voice Type", Value: voiceType},
		{Label: "Voice Print", Value: r.Details.VoicePrint},
	}
	v.Lists = nonEmptyLists(List{Title: "Artificial Markers", Items: r.Details.ArtificialMarkers})
	return v
}

func textView(r detector.TextReport) View {
	v := verdictView(r,
		[2]string{"Likely Credible", "Potentially Misleading"},
		[2]string{"Credible", "Suspicious"})
	v.Summary = fmt.Sprintf("%s confidence • %s sentiment", confidenceText(r.Confidence), r.Sentiment)
	v.Scores = []Score{
		{Label: "Source Reliability", Value: r.Details.SourceReliability},
		{Label: "Factual Consistency", Value: r.Details.FactualConsistency},
	}
	v.Lists = nonEmptyLists(
		List{Title: "Language Patterns", Items: r.Details.LanguagePatterns},
		List{Title: "Similar Sources", Items: r.Details.SimilarSources},
	)
	v.Link = r.Details.SourceURL
	return v
}

func nonEmptyLists(lists ...List) []List {
	var out []List
	for _, l := range lists {
		if len(l.Items) == 0 {
			continue
		}
		out = append(out, List{Title: l.Title, Items: append([]string(nil), l.Items...)})
	}
	return out
}

func confidenceText(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// clock formats seconds as m:ss.
func clock(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
