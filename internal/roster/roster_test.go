package roster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coopco/companion/internal/messages"
)

type countingLoader struct {
	calls map[string]int
	fail  map[string]bool
}

func (l *countingLoader) load(_ context.Context, m Model) (*messages.Schema, error) {
	l.calls[m.Name]++
	if l.fail[m.Name] {
		return nil, errors.New("unreachable")
	}
	s := messages.FromLines(m.Inline)
	s.Touch["Head"] = []string{m.Name + " head"}
	return s, nil
}

func newLoader() *countingLoader {
	return &countingLoader{calls: map[string]int{}, fail: map[string]bool{}}
}

func common() *messages.Schema {
	s := messages.FromLines([]string{"shared"})
	s.Touch["Head"] = []string{"common head"}
	s.Touch["Body"] = []string{"common body"}
	return s
}

var models = []Model{
	{Name: "shizuku", Inline: []string{"shizuku says hi"}},
	{Name: "haru", Inline: []string{"haru says hi"}},
}

func TestSchemaMergesCurrentModel(t *testing.T) {
	l := newLoader()
	r := New(common(), models, l.load)

	s, err := r.Schema(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"shared", "shizuku says hi"}, s.General)
	assert.Equal(t, []string{"shizuku head"}, s.Touch["Head"])
	assert.Equal(t, []string{"common body"}, s.Touch["Body"])

	i, name := r.Current()
	assert.Equal(t, 0, i)
	assert.Equal(t, "shizuku", name)
}

func TestNextCyclesAndCaches(t *testing.T) {
	l := newLoader()
	r := New(common(), models, l.load)
	ctx := context.Background()

	_, err := r.Schema(ctx)
	require.NoError(t, err)

	s, ok, err := r.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"shared", "haru says hi"}, s.General)
	_, name := r.Current()
	assert.Equal(t, "haru", name)

	s, ok, err = r.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"shared", "shizuku says hi"}, s.General)

	assert.Equal(t, map[string]int{"shizuku": 1, "haru": 1}, l.calls)
}

func TestNextWithSingleModel(t *testing.T) {
	r := New(common(), models[:1], newLoader().load)
	s, ok, err := r.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, s)
}

func TestNextKeepsCurrentOnLoadError(t *testing.T) {
	l := newLoader()
	l.fail["haru"] = true
	r := New(common(), models, l.load)

	_, ok, err := r.Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `model "haru"`)
	assert.False(t, ok)

	i, _ := r.Current()
	assert.Equal(t, 0, i)
}

func TestNoModels(t *testing.T) {
	r := New(common(), nil, newLoader().load)

	s, err := r.Schema(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"shared"}, s.General)

	i, name := r.Current()
	assert.Equal(t, -1, i)
	assert.Empty(t, name)

	_, err = r.Select(context.Background(), 0)
	assert.Error(t, err)
}

func TestSelectAndFind(t *testing.T) {
	r := New(common(), models, newLoader().load)

	i, ok := r.Find("haru")
	require.True(t, ok)
	s, err := r.Select(context.Background(), i)
	require.NoError(t, err)
	assert.Equal(t, []string{"shared", "haru says hi"}, s.General)

	_, ok = r.Find("hiyori")
	assert.False(t, ok)
}

func TestSetCommon(t *testing.T) {
	r := New(common(), models, newLoader().load)

	s, err := r.SetCommon(context.Background(), messages.FromLines([]string{"reloaded"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"reloaded", "shizuku says hi"}, s.General)
	assert.NotContains(t, s.Touch, "Body")
}
