package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadChannels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "channels.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"channels": [
			{"id": "UCabc", "name": "Hoops Daily", "category": "basketball"},
			{"id": "UCdef", "name": "No Category"},
			{"id": "", "name": "Missing ID"},
			{"id": "notachannel", "name": "Bad ID"}
		]
	}`), 0o644))

	channels, err := LoadChannels(path)
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, "UCabc", channels[0].ChannelID)
	assert.Equal(t, "basketball", channels[0].Category)
	assert.Equal(t, "unknown", channels[1].Category)
}

func TestLoadChannelsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "channels.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"channels": []}`), 0o644))

	_, err := LoadChannels(path)
	assert.Error(t, err)
}

func TestImportChannelsCSV(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "export.csv")
	dest := filepath.Join(dir, "channels.json")

	require.NoError(t, os.WriteFile(dest, []byte(`{
		"channels": [{"id": "UCexisting", "name": "Already Here", "category": "basketball"}]
	}`), 0o644))

	require.NoError(t, os.WriteFile(csvPath, []byte(
		"Channel ID,Name,Subscribers,Categories & niches (AI assigned)\n"+
			"UCexisting,Already Here,100000,Basketball\n"+
			"UCnew1,Fresh Channel,50000,Basketball highlights\n"+
			"UCnew2,Footy,20000,Soccer / football culture\n"+
			",No ID,10,\n",
	), 0o644))

	added, err := ImportChannelsCSV(csvPath, dest)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	channels, err := LoadChannels(dest)
	require.NoError(t, err)
	require.Len(t, channels, 3)
	assert.Equal(t, "UCnew1", channels[1].ChannelID)
	assert.Equal(t, "basketball", channels[1].Category)
	assert.Equal(t, "soccer", channels[2].Category)
}

func TestSimplifyCategory(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", "other"},
		{"Basketball highlights and analysis", "basketball"},
		{"American Football / NFL", "football"},
		{"Soccer / football culture", "soccer"},
		{"MMA and boxing", "combat"},
		{"Gaming and esports", "gaming"},
		{"Comedy skits and pranks", "culture"},
		{"Knitting tutorials", "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, simplifyCategory(tt.raw), tt.raw)
	}
}

func TestParseSubscriberCount(t *testing.T) {
	assert.Equal(t, int64(125000), ParseSubscriberCount(" 125000 "))
	assert.Equal(t, int64(0), ParseSubscriberCount(""))
	assert.Equal(t, int64(0), ParseSubscriberCount("1.2M"))
	assert.Equal(t, int64(0), ParseSubscriberCount("-5"))
}

func TestScannerConfigValidate(t *testing.T) {
	valid := ScannerConfig{
		MinRatio:         1.0,
		MinRatioSports:   0.75,
		MinRatioMid:      0.5,
		VideosPerChannel: 5,
		MinVideoAgeHours: 48,
		MaxVideoAgeHours: 168,
	}
	assert.NoError(t, valid.Validate())

	inverted := valid
	inverted.MinVideoAgeHours = 200
	assert.Error(t, inverted.Validate())

	midAboveSports := valid
	midAboveSports.MinRatioMid = 0.9
	assert.Error(t, midAboveSports.Validate())

	noVideos := valid
	noVideos.VideosPerChannel = 0
	assert.Error(t, noVideos.Validate())
}

func TestIsSportsCategory(t *testing.T) {
	cfg := ScannerConfig{SportsCategories: []string{"basketball", "football"}}
	assert.True(t, cfg.IsSportsCategory("Basketball"))
	assert.True(t, cfg.IsSportsCategory("football"))
	assert.False(t, cfg.IsSportsCategory("culture"))
}
