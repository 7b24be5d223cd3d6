package handlers

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"blogAPI/internal/apperror"
	"blogAPI/internal/auth"
	"blogAPI/internal/models"
	"blogAPI/internal/service"
)

type CommentRequest struct {
	Text string `json:"text"`
}

// multipartOverhead leaves room for the form fields around the image.
const multipartOverhead = 1 << 20

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	authorID, err := currentUserID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var input service.CreatePostInput

	if isMultipart(r) {
		var cleanup func()
		input, cleanup, err = h.parsePostForm(w, r)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		defer cleanup()
	} else if err := decodeJSON(w, r, &input); err != nil {
		h.respondError(w, r, err)
		return
	}

	post, err := h.PostService.Create(r.Context(), authorID, input)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	markLiked(r, post)
	writeJSON(w, post, http.StatusCreated)
}

func isMultipart(r *http.Request) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mediaType == "multipart/form-data"
}

// readMultipart parses a multipart body and returns its optional "image"
// file. cleanup releases the temporary files and must always be called.
func (h *Handlers) readMultipart(w http.ResponseWriter, r *http.Request) (*service.ImageUpload, func(), error) {
	noop := func() {}

	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, noop, apperror.Validation("upload exceeds %d bytes", h.Cfg.MaxUploadSize)
		}
		return nil, noop, apperror.Validation("invalid multipart form: %v", err)
	}

	cleanup := func() { _ = r.MultipartForm.RemoveAll() }

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return nil, cleanup, nil
	case err != nil:
		cleanup()
		return nil, noop, apperror.Validation("invalid image file: %v", err)
	}

	if header.Size > h.Cfg.MaxUploadSize {
		file.Close()
		cleanup()
		return nil, noop, apperror.Validation("upload exceeds %d bytes", h.Cfg.MaxUploadSize)
	}

	upload := &service.ImageUpload{FileName: header.Filename, Size: header.Size, File: file}
	return upload, func() {
		file.Close()
		_ = r.MultipartForm.RemoveAll()
	}, nil
}

// parsePostForm reads a multipart post: title, content, image (URL),
// comma separated tags and an optional "image" file.
func (h *Handlers) parsePostForm(w http.ResponseWriter, r *http.Request) (service.CreatePostInput, func(), error) {
	upload, cleanup, err := h.readMultipart(w, r)
	if err != nil {
		return service.CreatePostInput{}, cleanup, err
	}

	input := service.CreatePostInput{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Tags:    splitTags(r.FormValue("tags")),
		Upload:  upload,
	}
	if upload == nil {
		input.Image = r.FormValue("image")
	}

	return input, cleanup, nil
}

// parsePatchForm is parsePostForm for edits: only fields present in the
// form end up in the patch.
func (h *Handlers) parsePatchForm(w http.ResponseWriter, r *http.Request) (models.PostPatch, *service.ImageUpload, func(), error) {
	upload, cleanup, err := h.readMultipart(w, r)
	if err != nil {
		return models.PostPatch{}, nil, cleanup, err
	}

	patch := models.PostPatch{
		Title:   formField(r, "title"),
		Content: formField(r, "content"),
	}
	if upload == nil {
		patch.Image = formField(r, "image")
	}
	if raw := formField(r, "tags"); raw != nil {
		tags := splitTags(*raw)
		if tags == nil {
			tags = []string{}
		}
		patch.Tags = &tags
	}

	return patch, upload, cleanup, nil
}

func formField(r *http.Request, key string) *string {
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func (h *Handlers) GetPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.PostService.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	markLiked(r, posts...)
	writeJSON(w, posts, http.StatusOK)
}

func (h *Handlers) GetMyPosts(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	posts, err := h.PostService.ListByAuthor(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	markLiked(r, posts...)
	writeJSON(w, posts, http.StatusOK)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.PostService.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	markLiked(r, post)
	writeJSON(w, post, http.StatusOK)
}

// UpdatePost serves both PATCH and PUT, as JSON or multipart with an
// "image" file. Absent fields stay unchanged.
func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var (
		patch  models.PostPatch
		upload *service.ImageUpload
	)

	if isMultipart(r) {
		var cleanup func()
		patch, upload, cleanup, err = h.parsePatchForm(w, r)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		defer cleanup()
	} else if err := decodeJSON(w, r, &patch); err != nil {
		h.respondError(w, r, err)
		return
	}

	post, err := h.PostService.Update(r.Context(), mux.Vars(r)["id"], userID, patch, upload)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	markLiked(r, post)
	writeJSON(w, post, http.StatusOK)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	post, err := h.PostService.Delete(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	markLiked(r, post)
	writeJSON(w, post, http.StatusOK)
}

func (h *Handlers) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	post, err := h.PostService.ToggleLike(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	markLiked(r, post)
	writeJSON(w, post, http.StatusOK)
}

func (h *Handlers) GetComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.PostService.ListComments(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, comments, http.StatusOK)
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req CommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	comments, err := h.PostService.AddComment(r.Context(), mux.Vars(r)["id"], userID, req.Text)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, comments, http.StatusOK)
}

// markLiked sets LikedByMe for the authenticated caller. Anonymous
// requests leave it false.
func markLiked(r *http.Request, posts ...*models.Post) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		return
	}
	for _, post := range posts {
		post.LikedByMe = post.LikedBy(user.UserID)
	}
}
