package taxonomy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDataset(t *testing.T) {
	ds, err := Default()
	require.NoError(t, err)

	tax := ds.Taxonomy
	assert.Equal(t, 2, ds.Version)
	assert.Len(t, tax.MainGenres(), 20)
	assert.Len(t, ds.Seed, 40)

	main, ok := tax.MainGenre("Cricket")
	require.True(t, ok)
	assert.Equal(t, "Sports", main)

	assert.Equal(t,
		[]string{"Climate Change", "Pollution", "Wildlife", "Renewable Energy", "Conservation"},
		tax.Subgenres("Environment"))
}

func TestInverseIsPartition(t *testing.T) {
	ds, err := Default()
	require.NoError(t, err)
	tax := ds.Taxonomy

	total := 0
	for main, subs := range tax.Inverse() {
		total += len(subs)
		for _, sub := range subs {
			got, ok := tax.MainGenre(sub)
			require.True(t, ok, sub)
			assert.Equal(t, main, got, sub)
		}
	}
	assert.Equal(t, tax.Len(), total)
}

func TestUnknownGenreHasNoSubgenres(t *testing.T) {
	ds, err := Default()
	require.NoError(t, err)

	assert.Empty(t, ds.Taxonomy.Subgenres("NotARealGenre"))
	assert.False(t, ds.Taxonomy.HasMainGenre("NotARealGenre"))
	assert.False(t, ds.Taxonomy.Contains("Sports"))
}

func TestSubgenresReturnsCopy(t *testing.T) {
	tax, err := New([]Entry{{"Cricket", "Sports"}, {"Tennis", "Sports"}})
	require.NoError(t, err)

	subs := tax.Subgenres("Sports")
	subs[0] = "Mutated"
	assert.Equal(t, []string{"Cricket", "Tennis"}, tax.Subgenres("Sports"))
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New([]Entry{{"Policy", "Politics"}, {"Policy", "Education"}})
	assert.ErrorIs(t, err, ErrDuplicateSubgenre)
}

func TestNewRejectsEmptyNames(t *testing.T) {
	_, err := New([]Entry{{" ", "Politics"}})
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestLoadRejectsUnknownSeedLabel(t *testing.T) {
	doc := `
taxonomy:
  - genre: Sports
    subgenres: [Cricket]
seed:
  - label: Curling
    text: Stones slide across the ice.
`
	_, err := Load(strings.NewReader(doc))
	assert.ErrorIs(t, err, ErrUnknownLabel)
}

func TestLoadRejectsEmptySeedText(t *testing.T) {
	doc := `
taxonomy:
  - genre: Sports
    subgenres: [Cricket]
seed:
  - label: Cricket
    text: "  "
`
	_, err := Load(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	doc := `
taxonomy:
  - genre: Sports
    children: [Cricket]
`
	_, err := Load(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestMainGenresKeepDeclarationOrder(t *testing.T) {
	tax, err := New([]Entry{
		{"Cricket", "Sports"},
		{"Markets", "Business"},
		{"Tennis", "Sports"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sports", "Business"}, tax.MainGenres())
	assert.Equal(t, []string{"Cricket", "Tennis"}, tax.Subgenres("Sports"))
}
