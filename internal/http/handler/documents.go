package handler

import (
	"fmt"
	"mime"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"docstore/internal/http/middleware"
	"docstore/internal/service"
)

// UploadDocument accepts a multipart "file" field.
//
// @Summary  Upload a document
// @Tags     documents
// @Accept   multipart/form-data
// @Produce  json
// @Param    file        formData file   true  "document file"
// @Param    title       query    string false "title, defaults to the file name"
// @Param    description query    string false "description"
// @Param    is_public   query    bool   false "visible to every user"
// @Success  201 {object} uploadResponse
// @Failure  400 {object} errorPayload
// @Failure  413 {object} errorPayload
// @Security BearerAuth
// @Router   /documents [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		in := service.UploadInput{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Title:       c.Query("title"),
			IsPublic:    c.QueryBool("is_public", false),
			OwnerID:     middleware.UserID(c),
		}
		if d := c.Query("description"); d != "" {
			in.Description = &d
		}

		doc, err := svc.Upload(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(newUploadResponse(doc))
	}
}

// ListDocuments returns a page of the caller's documents.
//
// @Summary  List documents
// @Tags     documents
// @Produce  json
// @Param    page      query int    false "page, from 1"
// @Param    page_size query int    false "page size, at most 100"
// @Param    status    query string false "draft, published or archived"
// @Param    type      query string false "text, pdf, markdown or html"
// @Success  200 {object} listResponse
// @Security BearerAuth
// @Router   /documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := queryInt(c, "page", 1)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid page")
		}
		pageSize, err := queryInt(c, "page_size", 20)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE_SIZE", "invalid page_size")
		}

		res, err := svc.List(c.UserContext(), service.ListQuery{
			OwnerID:  middleware.UserID(c),
			Page:     page,
			PageSize: pageSize,
			Status:   c.Query("status"),
			Type:     c.Query("type"),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(newListResponse(res))
	}
}

// GetDocument returns a document with its tags and authors.
//
// @Summary  Get a document
// @Tags     documents
// @Produce  json
// @Param    id path string true "document id"
// @Success  200 {object} documentResponse
// @Failure  403 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Security BearerAuth
// @Router   /documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.Get(c.UserContext(), c.Params("id"), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(newDocumentResponse(doc))
	}
}

// UpdateDocument patches title, description, status and visibility.
//
// @Summary  Update document metadata
// @Tags     documents
// @Accept   json
// @Produce  json
// @Param    id   path string        true "document id"
// @Param    body body updateRequest true "fields to change"
// @Success  200 {object} documentResponse
// @Security BearerAuth
// @Router   /documents/{id} [patch]
func UpdateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		doc, err := svc.Update(c.UserContext(), c.Params("id"), middleware.UserID(c), service.UpdateInput{
			Title:       req.Title,
			Description: req.Description,
			Status:      req.Status,
			IsPublic:    req.IsPublic,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(newDocumentResponse(doc))
	}
}

// DeleteDocument removes the document and its files.
//
// @Summary  Delete a document
// @Tags     documents
// @Param    id path string true "document id"
// @Success  204
// @Security BearerAuth
// @Router   /documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id"), middleware.UserID(c)); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UploadVersion replaces the document's file, keeping the old one as a version.
//
// @Summary  Upload a new version
// @Tags     versions
// @Accept   multipart/form-data
// @Produce  json
// @Param    id             path     string true  "document id"
// @Param    file           formData file   true  "new file"
// @Param    change_summary query    string false "what changed"
// @Success  200 {object} uploadResponse
// @Security BearerAuth
// @Router   /documents/{id}/versions [post]
func UploadVersion(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		in := service.VersionInput{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
		}
		if s := c.Query("change_summary"); s != "" {
			in.ChangeSummary = &s
		}

		doc, version, err := svc.UploadVersion(c.UserContext(), c.Params("id"), middleware.UserID(c), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		res := newUploadResponse(doc)
		res.Version = version
		return c.JSON(res)
	}
}

// ListVersions returns the document's snapshots, newest first.
//
// @Summary  List versions
// @Tags     versions
// @Produce  json
// @Param    id path string true "document id"
// @Success  200 {array} model.DocumentVersion
// @Security BearerAuth
// @Router   /documents/{id}/versions [get]
func ListVersions(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		versions, err := svc.ListVersions(c.UserContext(), c.Params("id"), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(versions)
	}
}

// DownloadDocument redirects to a presigned link when the store can mint one
// and streams the current file otherwise.
//
// @Summary  Download a document
// @Tags     documents
// @Produce  octet-stream
// @Param    id path string true "document id"
// @Success  200 {file} file
// @Success  302 {string} string "redirect to a presigned storage URL"
// @Header   302 {string} Location "presigned storage URL"
// @Security BearerAuth
// @Router   /documents/{id}/download [get]
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dl, err := svc.Download(c.UserContext(), c.Params("id"), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		doc := dl.Document
		if dl.URL != "" {
			return c.Redirect(dl.URL, fiber.StatusFound)
		}
		c.Set(fiber.HeaderContentType, doc.MimeType)
		c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
		c.Set("X-Checksum-SHA256", doc.Checksum)
		// The response closes Body once it has been written.
		return c.SendStream(dl.Body, int(doc.FileSize))
	}
}

// DocumentTags lists the tags applied to a document.
//
// @Summary  List document tags
// @Tags     tags
// @Produce  json
// @Param    id path string true "document id"
// @Success  200 {array} model.Tag
// @Security BearerAuth
// @Router   /documents/{id}/tags [get]
func DocumentTags(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tags, err := svc.Tags(c.UserContext(), c.Params("id"), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(tags)
	}
}

// RegenerateTags queues the tagging workflow again.
//
// @Summary  Re-run tagging
// @Tags     tags
// @Produce  json
// @Param    id path string true "document id"
// @Success  202 {object} retagResponse
// @Failure  503 {object} errorPayload
// @Security BearerAuth
// @Router   /documents/{id}/tags/regenerate [post]
func RegenerateTags(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		taskID, err := svc.Retag(c.UserContext(), c.Params("id"), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(retagResponse{TaskID: taskID})
	}
}

// TaggingRuns lists the acknowledgment records of past tagging runs.
//
// @Summary  List tagging runs
// @Tags     tags
// @Produce  json
// @Param    id    path  string true  "document id"
// @Param    limit query int    false "at most 100"
// @Success  200 {array} model.TaggingRun
// @Security BearerAuth
// @Router   /documents/{id}/tagging-runs [get]
func TaggingRuns(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := queryInt(c, "limit", 20)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		runs, err := svc.TaggingRuns(c.UserContext(), c.Params("id"), middleware.UserID(c), limit)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(runs)
	}
}

// AttachAuthor links an existing author to a document.
//
// @Summary  Attach an author
// @Tags     authors
// @Param    id       path string true "document id"
// @Param    authorId path string true "author id"
// @Success  204
// @Security BearerAuth
// @Router   /documents/{id}/authors/{authorId} [post]
func AttachAuthor(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := svc.AttachAuthor(c.UserContext(), c.Params("id"), c.Params("authorId"), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// queryInt reads an optional integer query parameter.
func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
