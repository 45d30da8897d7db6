package transcript

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseChineseMode(t *testing.T) {
	t.Parallel()

	mode, err := ParseChineseMode(" Simplified ")
	require.NoError(t, err)
	require.Equal(t, ChineseSimplified, mode)

	mode, err = ParseChineseMode("traditional")
	require.NoError(t, err)
	require.Equal(t, ChineseTraditional, mode)

	for _, bad := range []string{"", "simple", "zh-hans", "trad", "both"} {
		_, err := ParseChineseMode(bad)
		require.Error(t, err, bad)
		require.Contains(t, err.Error(), "'simplified' or 'traditional'")
	}
}

func TestChineseModeFlagValue(t *testing.T) {
	t.Parallel()

	var mode ChineseMode
	require.NoError(t, mode.Set("TRADITIONAL"))
	require.Equal(t, "traditional", mode.String())
	require.Error(t, mode.Set("mandarin"))
	require.Equal(t, ChineseTraditional, mode)
}

func TestRequestValidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mp3 := filepath.Join(dir, "talk.MP3")
	wav := filepath.Join(dir, "talk.wav")
	require.NoError(t, os.WriteFile(mp3, []byte("ID3"), 0o644))
	require.NoError(t, os.WriteFile(wav, []byte("RIFF"), 0o644))

	require.NoError(t, Request{AudioPath: mp3}.Validate())
	require.ErrorIs(t, Request{AudioPath: wav}.Validate(), ErrNotMP3)
	require.ErrorIs(t, Request{AudioPath: filepath.Join(dir, "missing.mp3")}.Validate(), ErrAudioNotFound)
	require.ErrorIs(t, Request{AudioPath: dir}.Validate(), ErrAudioNotFound)
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/music/talk_transcription.txt", OutputPath("/music/talk.mp3"))
	require.Equal(t, "rel/a.b_transcription.txt", OutputPath("rel/a.b.MP3"))
	require.True(t, IsOutputFile("/music/talk_transcription.txt"))
	require.False(t, IsOutputFile("/music/talk.mp3"))
}
