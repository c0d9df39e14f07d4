package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stellargather/models"
	"stellargather/storage"
	"stellargather/utils"
)

const userNotFound = "User not found."

// GET /users
func (d *deps) getUsers(c *gin.Context) {
	users, err := d.Users.List(c.Request.Context())
	if err != nil {
		d.fail(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusOK, users)
}

// POST /users
func (d *deps) createUser(c *gin.Context) {
	var u models.User
	if !bindJSON(c, &u) {
		return
	}
	if err := d.Users.Create(c.Request.Context(), &u); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			abort(c, http.StatusBadRequest, "Username or email already registered.")
			return
		}
		d.fail(c, err, userNotFound)
		return
	}
	u.Password = models.MaskedPassword
	c.JSON(http.StatusCreated, u)
}

// GET /users/:id
func (d *deps) getUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	u, err := d.Users.GetByID(c.Request.Context(), id)
	if err != nil {
		d.fail(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusOK, u)
}

// PUT /users/:id
func (d *deps) updateUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var upd models.UserUpdate
	if !bindJSON(c, &upd) {
		return
	}
	if upd.Empty() {
		abort(c, http.StatusBadRequest, "No fields to update.")
		return
	}
	u, err := d.Users.Update(c.Request.Context(), id, upd)
	if err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			abort(c, http.StatusBadRequest, "Username or email already registered.")
			return
		}
		d.fail(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusOK, u)
}

// DELETE /users/:id
func (d *deps) deleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := d.Users.Delete(c.Request.Context(), id); err != nil {
		d.fail(c, err, userNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /users/login
func (d *deps) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	user, err := d.Users.ValidateCredentials(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, models.ErrNotFound):
		abort(c, http.StatusNotFound, userNotFound)
		return
	case errors.Is(err, models.ErrInvalidCredentials):
		abort(c, http.StatusUnauthorized, "Incorrect password.")
		return
	case err != nil:
		d.fail(c, err, userNotFound)
		return
	}

	token, err := d.Tokens.GenerateToken(utils.Identity{UserID: user.ID, Email: user.Email, IsAdmin: user.IsAdmin})
	if err != nil {
		d.fail(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Login successful!",
		"user_id":   user.ID,
		"full_name": user.FullName,
		"token":     token,
	})
}

// GET /users/:id/is-admin
func (d *deps) isAdmin(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	u, err := d.Users.GetByID(c.Request.Context(), id)
	if err != nil {
		d.fail(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_admin": u.IsAdmin})
}

// POST /users/validate-password/:id
func (d *deps) validatePassword(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	err := d.Users.CheckPassword(c.Request.Context(), id, req.Password)
	if errors.Is(err, models.ErrInvalidCredentials) {
		abort(c, http.StatusUnauthorized, "Incorrect password.")
		return
	}
	if err != nil {
		d.fail(c, err, userNotFound)
		return
	}
	message(c, http.StatusOK, "Password is valid.")
}

// GET /users/:id/registration-events
func (d *deps) userRegistrationEvents(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	page, ok := pageFrom(c)
	if !ok {
		return
	}
	rows, err := d.Registrations.ListForUser(c.Request.Context(), id, page)
	if err != nil {
		d.fail(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GET /users/:id/registrations-count
func (d *deps) userRegistrationsCount(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	n, err := d.Registrations.CountForUser(c.Request.Context(), id)
	if err != nil {
		d.fail(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registration_count": n})
}

// POST /users/:id/image
func (d *deps) uploadUserImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, err := d.Users.GetByID(c.Request.Context(), id); err != nil {
		d.fail(c, err, userNotFound)
		return
	}
	d.saveImage(c, storage.UserImage, id)
}
