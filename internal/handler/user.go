package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blood-uber/server/internal/model"
	"github.com/blood-uber/server/internal/repository"
)

// UserHandler serves identity records.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(u *repository.UserRepo) *UserHandler { return &UserHandler{Users: u} }

// Create registers a new user from the signup form.
func (h *UserHandler) Create(c echo.Context) error {
	var u model.User
	if err := c.Bind(&u); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	u.Normalize()
	if errs := model.ValidateUser(&u); errs != nil {
		return validationFailed(c, errs)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "username or email already taken"})
		}
		return storageErr(c, err, "user")
	}
	return c.JSON(http.StatusCreated, u)
}

// Get returns a user by id.
func (h *UserHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return notFound(c, "user")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return storageErr(c, err, "user")
	}
	return c.JSON(http.StatusOK, u)
}

type userUpdateReq struct {
	Username     *string  `json:"username"`
	Email        *string  `json:"email"`
	FirstName    *string  `json:"firstName"`
	LastName     *string  `json:"lastName"`
	Phone        *string  `json:"phone"`
	BloodGroup   *string  `json:"bloodGroup"`
	UserType     *string  `json:"userType"`
	Location     *string  `json:"location"`
	Availability *string  `json:"availability"`
	IsVerified   *bool    `json:"isVerified"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
}

// Update applies a partial profile update and returns the stored row.
func (h *UserHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return notFound(c, "user")
	}
	var req userUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}

	errs := map[string]string{}
	if req.BloodGroup != nil && !model.IsValidBloodGroup(*req.BloodGroup) {
		errs["bloodGroup"] = "must be one of A+,A-,B+,B-,AB+,AB-,O+,O-"
	}
	if req.UserType != nil && !model.IsValidUserType(*req.UserType) {
		errs["userType"] = "must be patient, donor or both"
	}
	if req.Email != nil && !model.IsValidEmail(*req.Email) {
		errs["email"] = "malformed"
	}
	if len(errs) > 0 {
		return validationFailed(c, errs)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.Update(ctx, id, repository.UserUpdate{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		BloodGroup:   req.BloodGroup,
		UserType:     req.UserType,
		Location:     req.Location,
		Availability: req.Availability,
		IsVerified:   req.IsVerified,
		Lat:          req.Lat,
		Lng:          req.Lng,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "username or email already taken"})
		}
		return storageErr(c, err, "user")
	}
	return c.JSON(http.StatusOK, u)
}
