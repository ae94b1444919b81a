package user

import (
	"go.uber.org/zap"

	"storefront/internal/user/controller"
	"storefront/internal/user/service"
)

// NewModule wires the credential store over repo. The repository is chosen
// by the caller so the mysql and memory drivers share this wiring.
func NewModule(repo service.UserRepository, hasher service.Hasher, issuer service.TokenIssuer, logger *zap.Logger) *controller.AuthController {
	credentialSvc := service.NewCredentialService(repo, hasher, issuer, logger.Named("credentials"))
	return controller.NewAuthController(credentialSvc, logger.Named("auth-controller"))
}
