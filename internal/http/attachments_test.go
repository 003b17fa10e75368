package http

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/ir-contacts/internal/entities"
)

func multipartUpload(t *testing.T, fieldName, fileName string, content []byte, extraFields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fieldName, fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	for key, value := range extraFields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func uploadAttachment(t *testing.T, env *testEnv, contactID uint, fileName string, content []byte) entities.Attachment {
	t.Helper()
	body, contentType := multipartUpload(t, "file", fileName, content, nil)
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/contacts/%d/attachments", contactID), body)
	req.Header.Set("Content-Type", contentType)
	w := env.do(t, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var attachment entities.Attachment
	decodeJSON(t, w, &attachment)
	require.NotZero(t, attachment.ID)
	return attachment
}

func TestAttachmentsController_Upload(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	contact := createContact(t, env, `{"name": "Ada Osei"}`)

	t.Run("stores blob and metadata", func(t *testing.T) {
		attachment := uploadAttachment(t, env, contact.ID, "deck.pdf", []byte("pdf bytes"))
		assert.Equal(t, contact.ID, attachment.ContactID)
		assert.Equal(t, "deck.pdf", attachment.FileName)
		assert.Equal(t, int64(len("pdf bytes")), attachment.SizeBytes)
		assert.NotEmpty(t, attachment.StoragePath)
	})

	t.Run("missing contact", func(t *testing.T) {
		body, contentType := multipartUpload(t, "file", "deck.pdf", []byte("x"), nil)
		req := httptest.NewRequest(http.MethodPost, "/api/contacts/9999/attachments", body)
		req.Header.Set("Content-Type", contentType)
		w := env.do(t, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing file field", func(t *testing.T) {
		body, contentType := multipartUpload(t, "other", "deck.pdf", []byte("x"), nil)
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/contacts/%d/attachments", contact.ID), body)
		req.Header.Set("Content-Type", contentType)
		w := env.do(t, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAttachmentsController_List(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	contact := createContact(t, env, `{"name": "Ada Osei"}`)
	uploadAttachment(t, env, contact.ID, "deck.pdf", []byte("pdf"))
	uploadAttachment(t, env, contact.ID, "notes.txt", []byte("notes"))

	w := env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/contacts/%d/attachments", contact.ID), "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []entities.Attachment `json:"data"`
	}
	decodeJSON(t, w, &resp)
	assert.Len(t, resp.Data, 2)
}

func TestAttachmentsController_Download(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	contact := createContact(t, env, `{"name": "Ada Osei"}`)
	attachment := uploadAttachment(t, env, contact.ID, "deck.pdf", []byte("pdf bytes"))

	t.Run("streams original bytes", func(t *testing.T) {
		w := env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/attachments/%d/download", attachment.ID), "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pdf bytes", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Disposition"), `"deck.pdf"`)
	})

	t.Run("missing attachment", func(t *testing.T) {
		w := env.doJSON(t, http.MethodGet, "/api/attachments/9999/download", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAttachmentsController_Delete(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	contact := createContact(t, env, `{"name": "Ada Osei"}`)
	attachment := uploadAttachment(t, env, contact.ID, "deck.pdf", []byte("pdf"))

	w := env.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/attachments/%d", attachment.ID), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.doJSON(t, http.MethodGet, fmt.Sprintf("/api/attachments/%d/download", attachment.ID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/attachments/%d", attachment.ID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
