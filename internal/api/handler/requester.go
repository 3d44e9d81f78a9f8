package handler

import (
	"net/http"

	"neurohire/internal/api/middleware"
	"neurohire/internal/app/service"
	"neurohire/internal/common"
	"neurohire/internal/domain/model"
)

// resolveRequester turns the authenticated token identity into the explicit
// Requester the service layer works with. On failure it writes the error
// response and returns ok=false.
func resolveRequester(w http.ResponseWriter, r *http.Request, access *service.AccessService) (service.Requester, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return service.Requester{}, false
	}
	userType, _ := middleware.GetUserTypeFromContext(r.Context())

	requester, err := access.Resolve(r.Context(), userID, model.UserType(userType))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return service.Requester{}, false
	}
	return requester, true
}
