package news

import (
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/deusflow/newsbrief/internal/processor"
	"github.com/deusflow/newsbrief/internal/storage"
	"github.com/deusflow/newsbrief/internal/taxonomy"
)

// DefaultDisplaySubgenre is shown for subgenres outside the taxonomy, such as
// the empty-article sentinel.
const DefaultDisplaySubgenre = "Default"

// Digest is one processed article ready for presentation.
type Digest struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Source    string    `json:"source"`
	Published time.Time `json:"published"`

	processor.SummaryResult

	DisplaySubgenre string `json:"display_subgenre"`
	ImageKey        string `json:"image_key"`
}

// DisplaySubgenre returns subgenre when the taxonomy knows it and
// DefaultDisplaySubgenre otherwise.
func DisplaySubgenre(tax *taxonomy.Taxonomy, subgenre string) string {
	if tax != nil && tax.Contains(subgenre) {
		return subgenre
	}
	return DefaultDisplaySubgenre
}

// ImageKey maps a display subgenre to the file-name-safe key of its artwork.
func ImageKey(displaySubgenre string) string {
	return slug.Make(displaySubgenre)
}

// NewDigest attaches presentation fields to a processing result.
func NewDigest(tax *taxonomy.Taxonomy, res processor.SummaryResult) Digest {
	display := DisplaySubgenre(tax, res.Subgenre)
	return Digest{
		SummaryResult:   res,
		DisplaySubgenre: display,
		ImageKey:        ImageKey(display),
	}
}

// Record converts the digest into its persisted form.
func (d Digest) Record() storage.Record {
	return storage.Record{
		Hash:            storage.Hash(d.Link),
		Link:            d.Link,
		Title:           d.Title,
		Source:          d.Source,
		Summary:         d.Summary,
		MainGenre:       d.MainGenre,
		Subgenre:        d.Subgenre,
		DisplaySubgenre: d.DisplaySubgenre,
		ImageKey:        d.ImageKey,
		Published:       d.Published,
	}
}

// FormatDigest produces a short plain-text rendering of d.
func FormatDigest(d Digest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s / %s] %s\n", d.MainGenre, d.DisplaySubgenre, d.Title)
	if d.Summary != "" {
		b.WriteString(d.Summary + "\n")
	}
	if d.Link != "" {
		b.WriteString(d.Link + "\n")
	}
	b.WriteString("--------------------------")
	return b.String()
}
