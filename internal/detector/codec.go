package detector

import (
	"encoding/json"
	"fmt"

	"github.com/example/authguard/internal/media"
)

// envelope tags a report with its media category on the wire.
type envelope struct {
	Media  media.Category  `json:"media"`
	Report json.RawMessage `json:"report"`
}

// Marshal encodes r as a tagged JSON document.
func Marshal(r Report) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("marshal report: nil report")
	}
	body, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(envelope{Media: r.Media(), Report: body}, "", "  ")
}

// Unmarshal decodes a document produced by Marshal.
func Unmarshal(data []byte) (Report, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode report envelope: %w", err)
	}
	if len(env.Report) == 0 {
		return nil, fmt.Errorf("decode report: missing report body")
	}

	switch env.Media {
	case media.Image:
		return decodeAs[ImageReport](env.Report)
	case media.Video:
		return decodeAs[VideoReport](env.Report)
	case media.Audio:
		return decodeAs[AudioReport](env.Report)
	case media.Text:
		return decodeAs[TextReport](env.Report)
	default:
		return nil, fmt.Errorf("decode report: unknown media %q", env.Media)
	}
}

func decodeAs[T Report](body json.RawMessage) (Report, error) {
	var r T
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("decode %T: %w", r, err)
	}
	return r, nil
}

// Clone returns a deep copy so holders cannot mutate shared slices.
func Clone(r Report) Report {
	switch v := r.(type) {
	case ImageReport:
		v.Details.Manipulations = cloneStrings(v.Details.Manipulations)
		return v
	case VideoReport:
		v.Details.TemporalAnomalies = cloneStrings(v.Details.TemporalAnomalies)
		return v
	case AudioReport:
		v.Details.ArtificialMarkers = cloneStrings(v.Details.ArtificialMarkers)
		return v
	case TextReport:
		v.Details.LanguagePatterns = cloneStrings(v.Details.LanguagePatterns)
		v.Details.SimilarSources = cloneStrings(v.Details.SimilarSources)
		return v
	default:
		return r
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}
