package membership

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registrationFormWithImage(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"nim": "215610009", "nama": "Budi Santoso", "email": "budi9@students.utdi.ac.id",
	} {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("users_image", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestRegistrationStoresImage(t *testing.T) {
	srv, repo, _ := testServer(t)

	buf, ctype := registrationFormWithImage(t, "photo.png", []byte("pretend-png-bytes"))
	resp, err := http.Post(srv.URL+"/api/registration", ctype, buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	var data struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	p, err := repo.GetPersonByID(context.Background(), data.ID)
	require.NoError(t, err)
	assert.Contains(t, p.ImageURL, "uploads/users_image/users_image-")
	assert.Contains(t, p.ImageURL, ".png")
}

func TestRegistrationRejectsNonImageUpload(t *testing.T) {
	srv, _, _ := testServer(t)

	buf, ctype := registrationFormWithImage(t, "resume.pdf", []byte("%PDF-"))
	resp, err := http.Post(srv.URL+"/api/registration", ctype, buf)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
