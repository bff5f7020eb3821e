package clientcli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/attachly/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleUpload() clientcli.UploadResult {
	return clientcli.UploadResult{
		LocalPath: "./photo.png",
		ID:        uuid.MustParse("0b6c3a9e-4d8f-4a51-9c2b-1f6f3e2d7a10"),
		NoteID:    "n1",
		Filename:  "photo.png",
		FilePath:  "notes/u1/n1/1712345678901.png",
		FileType:  "image/png",
		Size:      2048,
		CreatedAt: time.Date(2024, 4, 5, 19, 34, 38, 0, time.UTC),
	}
}

func TestNewFormatter(t *testing.T) {
	_, ok := clientcli.NewFormatter(true, false).(*clientcli.JSONFormatter)
	assert.True(t, ok)

	hf, ok := clientcli.NewFormatter(false, true).(*clientcli.HumanFormatter)
	require.True(t, ok)
	assert.True(t, hf.Quiet)
}

func TestHumanFormatter_FormatUpload(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatUpload(&buf, []clientcli.UploadResult{sampleUpload()}))

		out := buf.String()
		assert.Contains(t, out, "Uploaded: photo.png (2.0 KB)")
		assert.Contains(t, out, "0b6c3a9e-4d8f-4a51-9c2b-1f6f3e2d7a10")
		assert.Contains(t, out, "notes/u1/n1/1712345678901.png")
	})

	t.Run("quiet prints IDs only", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{Quiet: true}).FormatUpload(&buf, []clientcli.UploadResult{sampleUpload()}))
		assert.Equal(t, "0b6c3a9e-4d8f-4a51-9c2b-1f6f3e2d7a10\n", buf.String())
	})

	t.Run("error", func(t *testing.T) {
		var buf bytes.Buffer
		results := []clientcli.UploadResult{{LocalPath: "big.bin", Err: errors.New("too large")}}
		require.NoError(t, (&clientcli.HumanFormatter{Quiet: true}).FormatUpload(&buf, results))
		assert.Equal(t, "Error: big.bin - too large\n", buf.String())
	})
}

func TestHumanFormatter_FormatDelete(t *testing.T) {
	var buf bytes.Buffer
	results := []clientcli.DeleteResult{
		{ID: "a", Deleted: true},
		{ID: "b", Err: errors.New("not found")},
	}
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatDelete(&buf, results))
	assert.Equal(t, "Deleted: a\nError: b - not found\n", buf.String())
}

func TestJSONFormatter_FormatUpload(t *testing.T) {
	var buf bytes.Buffer
	results := []clientcli.UploadResult{sampleUpload(), {LocalPath: "x", Err: errors.New("boom")}}
	require.NoError(t, (&clientcli.JSONFormatter{}).FormatUpload(&buf, results))

	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "0b6c3a9e-4d8f-4a51-9c2b-1f6f3e2d7a10", out[0]["id"])
	assert.Equal(t, "image/png", out[0]["file_type"])
	assert.Equal(t, "2024-04-05T19:34:38Z", out[0]["created_at"])
	assert.Equal(t, "boom", out[1]["error"])
	assert.NotContains(t, out[1], "id")
}

func TestJSONFormatter_FormatDelete(t *testing.T) {
	var buf bytes.Buffer
	results := []clientcli.DeleteResult{{ID: "a", Deleted: true}, {ID: "b", Err: errors.New("nope")}}
	require.NoError(t, (&clientcli.JSONFormatter{}).FormatDelete(&buf, results))
	assert.JSONEq(t, `{"results":[{"id":"a","deleted":true},{"id":"b","deleted":false,"error":"nope"}]}`, buf.String())
}

func TestFormatError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&clientcli.JSONFormatter{}).FormatError(&buf, errors.New("bad")))
	assert.JSONEq(t, `{"error":"bad"}`, buf.String())

	buf.Reset()
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatError(&buf, errors.New("bad")))
	assert.Equal(t, "Error: bad\n", buf.String())
}

func TestFormatProfiles_MasksToken(t *testing.T) {
	profiles := []clientcli.Profile{
		{Name: "local", Endpoint: "http://localhost:5708", Token: "eyJhbGciOiJIUzI1NiJ9.payload.sig"},
		{Name: "empty", Endpoint: "http://x"},
	}

	var buf bytes.Buffer
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileList(&buf, profiles, "local", false))
	out := buf.String()
	assert.Contains(t, out, "* local")
	assert.Contains(t, out, "eyJh....sig")
	assert.Contains(t, out, "(not set)")
	assert.NotContains(t, out, "payload")

	buf.Reset()
	require.NoError(t, (&clientcli.JSONFormatter{}).FormatProfileShow(&buf, profiles[0], true, true))
	assert.JSONEq(t, `{"name":"local","endpoint":"http://localhost:5708","token":"eyJhbGciOiJIUzI1NiJ9.payload.sig","default":true}`, buf.String())
}

func TestHumanFormatter_FormatProfileShow(t *testing.T) {
	var buf bytes.Buffer
	p := clientcli.Profile{Name: "prod", Endpoint: "https://attach.example.com", Token: "abcdefghijklmnop"}
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileShow(&buf, p, true, false))

	assert.Equal(t, "Name:     prod (default)\nEndpoint: https://attach.example.com\nToken:    abcd...mnop\n", buf.String())
}
