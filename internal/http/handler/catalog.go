package handler

import (
	"github.com/gofiber/fiber/v2"

	"docstore/internal/model"
	"docstore/internal/service"
)

// ListTags returns the shared tag vocabulary.
//
// @Summary  List tags
// @Tags     tags
// @Produce  json
// @Success  200 {array} model.Tag
// @Security BearerAuth
// @Router   /tags [get]
func ListTags(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tags, err := svc.ListTags(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(tags)
	}
}

// CreateTag adds a tag to the vocabulary.
//
// @Summary  Create a tag
// @Tags     tags
// @Accept   json
// @Produce  json
// @Param    body body tagRequest true "tag"
// @Success  201 {object} model.Tag
// @Failure  409 {object} errorPayload
// @Security BearerAuth
// @Router   /tags [post]
func CreateTag(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req tagRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		tag, err := svc.CreateTag(c.UserContext(), model.Tag{
			Name:        req.Name,
			Description: req.Description,
			Color:       req.Color,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(tag)
	}
}

// @Summary  List authors
// @Tags     authors
// @Produce  json
// @Success  200 {array} model.Author
// @Security BearerAuth
// @Router   /authors [get]
func ListAuthors(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authors, err := svc.ListAuthors(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(authors)
	}
}

// @Summary  Create an author
// @Tags     authors
// @Accept   json
// @Produce  json
// @Param    body body authorRequest true "author"
// @Success  201 {object} model.Author
// @Security BearerAuth
// @Router   /authors [post]
func CreateAuthor(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req authorRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		author, err := svc.CreateAuthor(c.UserContext(), model.Author{
			Name:  req.Name,
			Email: req.Email,
			Bio:   req.Bio,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(author)
	}
}
