package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"transfers/internal/domain/models"
	"transfers/internal/http/middleware"
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type registerRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type sessionResponse struct {
	Authenticated bool             `json:"authenticated"`
	User          *models.Identity `json:"user,omitempty"`
	ExpiresAt     string           `json:"expires_at,omitempty"`
}

func newSessionResponse(s models.Session) sessionResponse {
	if !s.Authenticated {
		return sessionResponse{}
	}
	out := sessionResponse{Authenticated: true, User: &s.Identity}
	if !s.ExpiresAt.IsZero() {
		out.ExpiresAt = s.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return out
}

// GET /login
func (h *Handlers) LoginPage(c *gin.Context) {
	if middleware.GetSession(c).Authenticated {
		c.Redirect(http.StatusSeeOther, safeRedirect(c.Query("next"), "/"))
		return
	}
	p := h.page(c, h.Translator.T(middleware.GetLang(c), "auth.login_title"))
	p.Form = map[string]string{"next": c.Query("next")}
	c.HTML(http.StatusOK, "login", p)
}

// POST /login
func (h *Handlers) LoginSubmit(c *gin.Context) {
	var req loginRequest
	_ = c.ShouldBind(&req)
	next := c.PostForm("next")

	if _, err := h.Sessions.Login(c.Request.Context(), middleware.GetVisitor(c), req.Email, req.Password); err != nil {
		status, _ := errorCode(err)
		p := h.page(c, h.Translator.T(middleware.GetLang(c), "auth.login_title"))
		p.Error = h.message(p.Lang, err)
		p.Form = map[string]string{"email": req.Email, "next": next}
		c.HTML(status, "login", p)
		return
	}
	c.Redirect(http.StatusSeeOther, safeRedirect(next, "/"))
}

// GET /register
func (h *Handlers) RegisterPage(c *gin.Context) {
	p := h.page(c, h.Translator.T(middleware.GetLang(c), "auth.register_title"))
	c.HTML(http.StatusOK, "register", p)
}

// POST /register
func (h *Handlers) RegisterSubmit(c *gin.Context) {
	var req registerRequest
	_ = c.ShouldBind(&req)

	if _, err := h.Sessions.Register(c.Request.Context(), middleware.GetVisitor(c), req.Name, req.Email, req.Password); err != nil {
		status, _ := errorCode(err)
		p := h.page(c, h.Translator.T(middleware.GetLang(c), "auth.register_title"))
		p.Error = h.message(p.Lang, err)
		p.Form = map[string]string{"name": req.Name, "email": req.Email}
		c.HTML(status, "register", p)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// POST /logout
func (h *Handlers) LogoutSubmit(c *gin.Context) {
	if err := h.Sessions.Logout(c.Request.Context(), middleware.GetVisitor(c)); err != nil {
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// POST /api/auth/login
func (h *Handlers) APILogin(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	sess, err := h.Sessions.Login(c.Request.Context(), middleware.GetVisitor(c), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(sess))
}

// POST /api/auth/register
func (h *Handlers) APIRegister(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	sess, err := h.Sessions.Register(c.Request.Context(), middleware.GetVisitor(c), req.Name, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSessionResponse(sess))
}

// POST /api/auth/logout
func (h *Handlers) APILogout(c *gin.Context) {
	if err := h.Sessions.Logout(c.Request.Context(), middleware.GetVisitor(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(models.Session{}))
}

// GET /api/auth/session
func (h *Handlers) APISession(c *gin.Context) {
	c.JSON(http.StatusOK, newSessionResponse(middleware.GetSession(c)))
}
