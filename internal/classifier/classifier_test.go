package classifier

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsbrief/internal/taxonomy"
)

func defaultClassifier(t *testing.T) (*Classifier, *taxonomy.Dataset) {
	t.Helper()
	ds, err := taxonomy.Default()
	require.NoError(t, err)
	return New(ds.Taxonomy, ds.Seed, DefaultTrainConfig()), ds
}

func TestPredictSubgenreCricket(t *testing.T) {
	c, _ := defaultClassifier(t)

	got, err := c.PredictSubgenre(
		"Cricket team qualified for the Olympics; football and tennis highlights with athletics performance.",
		"Sports")
	require.NoError(t, err)
	assert.Equal(t, "Cricket", got)
}

func TestPredictSubgenreStaysInsideMainGenre(t *testing.T) {
	c, ds := defaultClassifier(t)

	for _, main := range ds.Taxonomy.MainGenres() {
		allowed := ds.Taxonomy.Subgenres(main)
		for _, ex := range ds.Seed {
			got, err := c.PredictSubgenre(ex.Text, main)
			require.NoError(t, err)
			assert.Contains(t, allowed, got, "main=%s text=%q", main, ex.Text)
		}
	}
}

func TestPredictSubgenreSeedTextsInOwnGenre(t *testing.T) {
	c, ds := defaultClassifier(t)

	for _, ex := range ds.Seed {
		main, ok := ds.Taxonomy.MainGenre(ex.Label)
		require.True(t, ok)
		got, err := c.PredictSubgenre(ex.Text, main)
		require.NoError(t, err)
		assert.Equal(t, ex.Label, got, "text=%q", ex.Text)
	}
}

func TestPredictSubgenreUnknownGenreFallsBack(t *testing.T) {
	c, _ := defaultClassifier(t)

	got, err := c.PredictSubgenre("Monsoon forecast warns heatwave and cyclone risk.", "NotARealGenre")
	require.NoError(t, err)
	assert.NotEmpty(t, got)
	assert.Contains(t, c.Model().Classes(), got)

	global, err := c.Predict("Monsoon forecast warns heatwave and cyclone risk.")
	require.NoError(t, err)
	assert.Equal(t, global, got)
}

func TestPredictSubgenreEmptyFeatures(t *testing.T) {
	c, ds := defaultClassifier(t)

	got, err := c.PredictSubgenre("zzz qqq", "Environment")
	require.NoError(t, err)
	assert.Contains(t, ds.Taxonomy.Subgenres("Environment"), got)
}

func TestUntrainedSubgenresResolveToFirstListed(t *testing.T) {
	tax, err := taxonomy.New([]taxonomy.Entry{
		{Subgenre: "Cricket", MainGenre: "Sports"},
		{Subgenre: "Hockey", MainGenre: "Sports"},
		{Subgenre: "Monsoon", MainGenre: "Weather"},
		{Subgenre: "Forecast", MainGenre: "Weather"},
	})
	require.NoError(t, err)

	seed := []taxonomy.Example{
		{Text: "Cricket batsman scores a century at the stadium", Label: "Cricket"},
		{Text: "Hockey goalie saves penalty on the ice rink", Label: "Hockey"},
	}
	c := New(tax, seed, DefaultTrainConfig())

	got, err := c.PredictSubgenre("Heavy rain expected this week", "Weather")
	require.NoError(t, err)
	assert.Equal(t, "Monsoon", got)
}

func TestTwoClassScoresAreMirrored(t *testing.T) {
	m, err := Train(
		[]string{
			"cricket batsman century stadium",
			"cricket bowler wicket pitch",
			"hockey goalie penalty rink",
			"hockey puck stick ice",
		},
		[]string{"Cricket", "Cricket", "Hockey", "Hockey"},
		DefaultTrainConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"Cricket", "Hockey"}, m.Classes())

	scores := m.Scores("bowler takes a wicket")
	require.Len(t, scores, 2)
	assert.InDelta(t, -scores["Cricket"], scores["Hockey"], 1e-12)
	assert.Greater(t, scores["Cricket"], scores["Hockey"])
	assert.Equal(t, "Cricket", m.Predict("bowler takes a wicket"))
	assert.Equal(t, "Hockey", m.Predict("goalie stops the puck"))
}

func TestSingleClassModel(t *testing.T) {
	m, err := Train([]string{"only cricket here"}, []string{"Cricket"}, DefaultTrainConfig())
	require.NoError(t, err)
	assert.Equal(t, "Cricket", m.Predict("anything at all"))
	assert.Equal(t, map[string]float64{"Cricket": 0}, m.Scores("anything"))
}

func TestTrainErrors(t *testing.T) {
	_, err := Train(nil, nil, DefaultTrainConfig())
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	_, err = Train([]string{"a"}, []string{"x", "y"}, DefaultTrainConfig())
	assert.Error(t, err)

	_, err = Train([]string{"the and of"}, []string{"x"}, DefaultTrainConfig())
	assert.Error(t, err)
}

func TestEmptySeedSurfacesTrainingError(t *testing.T) {
	ds, err := taxonomy.Default()
	require.NoError(t, err)

	c := New(ds.Taxonomy, nil, DefaultTrainConfig())
	_, err = c.PredictSubgenre("text", "Sports")
	assert.ErrorIs(t, err, ErrEmptyCorpus)
	assert.Nil(t, c.Model())
	assert.Equal(t, 0, c.TrainCount())
}

func TestTrainsExactlyOnceUnderConcurrency(t *testing.T) {
	c, _ := defaultClassifier(t)
	require.Nil(t, c.Model())

	const workers = 32
	models := make([]*Model, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := c.PredictSubgenre("Markets rallied as banking stocks rose.", "Business")
			assert.NoError(t, err)
			models[i] = c.Model()
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, c.TrainCount())
	for _, m := range models {
		assert.Same(t, models[0], m)
	}

	require.NoError(t, c.EnsureTrained())
	assert.Equal(t, 1, c.TrainCount())
	assert.Same(t, models[0], c.Model())
}

func TestInferenceWithoutModelPanics(t *testing.T) {
	c, _ := defaultClassifier(t)
	assert.Panics(t, func() { c.mustModel() })
}

func TestPredictionIsDeterministic(t *testing.T) {
	a, _ := defaultClassifier(t)
	b, _ := defaultClassifier(t)

	text := "Renewable energy projects expand while pollution worries grow."
	sa := mustScores(t, a, text)
	sb := mustScores(t, b, text)
	require.Equal(t, len(sa), len(sb))
	for class, v := range sa {
		assert.False(t, math.IsNaN(v))
		assert.Equal(t, v, sb[class], class)
	}
}

func mustScores(t *testing.T, c *Classifier, text string) map[string]float64 {
	t.Helper()
	require.NoError(t, c.EnsureTrained())
	return c.Model().Scores(text)
}
