package controllers

import (
	"errors"
	"strings"

	"auction-backend/models"
	"auction-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthController handles login and the current-user endpoint.
type AuthController struct {
	DB *gorm.DB
}

// NewAuthController creates a new AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public part of a user account.
type UserResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Company    string `json:"company"`
	Role       string `json:"role"`
	SupplierID string `json:"supplier_id,omitempty"`
}

// AuthResponse is returned by Login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// Login checks credentials and issues an access token carrying the role and,
// for supplier accounts, the linked supplier id.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Email and password are required",
		})
	}

	var user models.User
	if err := ac.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return c.Status(401).JSON(fiber.Map{
			"error": "Invalid email or password",
		})
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return c.Status(401).JSON(fiber.Map{
			"error": "Invalid email or password",
		})
	}

	if !user.IsActive {
		utils.Warn("Login attempt on disabled account", map[string]interface{}{"user_id": user.ID})
		return c.Status(401).JSON(fiber.Map{
			"error": "Account is disabled",
		})
	}

	supplierID, err := ac.supplierIDFor(&user)
	if err != nil {
		utils.Error("Supplier lookup failed", map[string]interface{}{"user_id": user.ID, "error": err.Error()})
		return c.Status(500).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role, supplierID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to create token",
		})
	}

	utils.Info("User logged in", map[string]interface{}{"user_id": user.ID, "role": user.Role})

	return c.JSON(AuthResponse{
		Token: token,
		User:  userResponse(&user, supplierID),
	})
}

// Me returns the authenticated user.
func (ac *AuthController) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var user models.User
	if err := ac.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	supplierID, _ := c.Locals("supplier_id").(string)
	return c.JSON(userResponse(&user, supplierID))
}

func (ac *AuthController) supplierIDFor(user *models.User) (string, error) {
	if user.Role != models.RoleSupplier {
		return "", nil
	}
	var supplier models.Supplier
	err := ac.DB.Select("id").Where("user_id = ?", user.ID).First(&supplier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return supplier.ID, nil
}

func userResponse(user *models.User, supplierID string) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Company:    user.Company,
		Role:       user.Role,
		SupplierID: supplierID,
	}
}

// SeedAdmin creates the administrator account if no user has that email yet.
func SeedAdmin(db *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	utils.Info("Admin account created", map[string]interface{}{"email": email})
	return nil
}
