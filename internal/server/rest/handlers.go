package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/userdirectory/internal/common"
	"github.com/dmitrijs2005/userdirectory/internal/server/models"
	"github.com/gofiber/fiber/v2"
)

var errUserNotFound = fiber.NewError(fiber.StatusNotFound, "User not found.")

func (s *RESTServer) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

type loginRequest struct {
	UID  string `json:"uid"`
	Pass string `json:"pass"`
}

func (s *RESTServer) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fmt.Errorf("%w: invalid JSON body", common.ErrorValidation)
	}
	if req.UID == "" || req.Pass == "" {
		return fmt.Errorf("%w: uid and pass are required", common.ErrorValidation)
	}

	token, err := s.auth.Login(c.UserContext(), req.UID, req.Pass)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return fiber.NewError(fiber.StatusUnauthorized, "Failed to log in")
		}
		return err
	}

	return c.JSON(fiber.Map{"token": token})
}

func (s *RESTServer) checkAuth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Token is valid"})
}

func (s *RESTServer) listUsers(c *fiber.Ctx) error {
	p := models.SearchParams{
		Search: c.Query("search"),
		Sort:   c.Query("sort", models.DefaultSort),
		Page:   c.QueryInt("page", models.DefaultPage),
		Limit:  c.QueryInt("limit", models.DefaultLimit),
	}

	users, err := s.users.Search(c.UserContext(), p)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "No users found"})
		}
		return err
	}

	return c.JSON(users)
}

func userID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid user id %q", common.ErrorValidation, c.Params("id"))
	}
	return id, nil
}

func notFoundAsUser(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return errUserNotFound
	}
	return err
}

func (s *RESTServer) getUser(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(c.UserContext(), id)
	if err != nil {
		return notFoundAsUser(err)
	}

	return c.JSON(user)
}

// decodeBatch accepts a JSON array of users or a single user object. The
// elements are left undecoded so a bad row fails on its own.
func decodeBatch(body []byte) ([]json.RawMessage, error) {
	body = bytes.TrimSpace(body)

	switch {
	case len(body) > 0 && body[0] == '[':
		var batch []json.RawMessage
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
		}
		return batch, nil
	case len(body) > 0 && body[0] == '{':
		if !json.Valid(body) {
			return nil, fmt.Errorf("%w: body is not valid JSON", common.ErrorValidation)
		}
		return []json.RawMessage{body}, nil
	default:
		return nil, fmt.Errorf("%w: body must be a JSON object or array", common.ErrorValidation)
	}
}

func (s *RESTServer) createUsers(c *fiber.Ctx) error {
	batch, err := decodeBatch(c.Body())
	if err != nil {
		return err
	}

	res, err := s.users.CreateUsersJSON(c.UserContext(), batch)
	if err != nil {
		if res != nil && errors.Is(err, common.ErrorValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(res)
		}
		return err
	}

	return c.JSON(res)
}

func decodeFields(body []byte) (models.Fields, error) {
	var f models.Fields
	if err := json.Unmarshal(body, &f); err != nil || f == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", common.ErrorValidation)
	}
	return f, nil
}

func (s *RESTServer) updateUser(c *fiber.Ctx) error {
	return s.modifyUser(c, s.users.Update)
}

func (s *RESTServer) patchUser(c *fiber.Ctx) error {
	return s.modifyUser(c, s.users.Patch)
}

func (s *RESTServer) modifyUser(c *fiber.Ctx, apply func(ctx context.Context, id int64, f models.Fields) (*models.User, error)) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	f, err := decodeFields(c.Body())
	if err != nil {
		return err
	}

	user, err := apply(c.UserContext(), id, f)
	if err != nil {
		return notFoundAsUser(err)
	}

	return c.JSON(user)
}

func (s *RESTServer) deleteUser(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	if err := s.users.Delete(c.UserContext(), id); err != nil {
		return notFoundAsUser(err)
	}

	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

func (s *RESTServer) summary(c *fiber.Ctx) error {
	stats, err := s.users.Statistics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
