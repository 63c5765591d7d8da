package permissions

import (
	"courtside/shared/constant"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

var (
	knownRoles   = []string{constant.RoleUser, constant.RoleOwner, constant.RoleAdmin, constant.RoleSuperAdmin}
	knownMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}
)

type Permission struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
}

// Allows reports whether role may call the endpoint. Skipped endpoints allow anyone.
func (p Permission) Allows(role string) bool {
	return p.Skip || len(p.Permissions) == 0 || slices.Contains(p.Permissions, role)
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`
}

// FindPermissions matches a chi route pattern exactly.
func (r *PermissionData) FindPermissions(path, method string) Permission {
	idx := slices.IndexFunc(r.Endpoints, func(rp Permission) bool {
		return rp.Path == path && rp.Method == method
	})

	if idx == -1 {
		return Permission{}
	}

	return r.Endpoints[idx]
}

// Validate rejects typos that would otherwise silently open or close an endpoint.
func (r *PermissionData) Validate() error {
	seen := make(map[string]bool, len(r.Endpoints))

	for _, endpoint := range r.Endpoints {
		key := endpoint.Method + " " + endpoint.Path

		switch {
		case !strings.HasPrefix(endpoint.Path, "/"):
			return fmt.Errorf("%s: path must start with /", key)
		case !slices.Contains(knownMethods, endpoint.Method):
			return fmt.Errorf("%s: unknown method", key)
		case seen[key]:
			return fmt.Errorf("%s: declared twice", key)
		case !endpoint.Skip && len(endpoint.Permissions) == 0:
			return fmt.Errorf("%s: needs permissions or skip", key)
		}

		for _, role := range endpoint.Permissions {
			if !slices.Contains(knownRoles, role) {
				return fmt.Errorf("%s: unknown role %q", key, role)
			}
		}

		seen[key] = true
	}

	return nil
}

func Parse(raw []byte) (*PermissionData, error) {
	var permissions PermissionData

	if err := json.Unmarshal(raw, &permissions); err != nil {
		return nil, fmt.Errorf("decoding permissions: %w", err)
	}

	if err := permissions.Validate(); err != nil {
		return nil, fmt.Errorf("invalid permissions: %w", err)
	}

	return &permissions, nil
}

func Get() *PermissionData {
	permissions, err := Parse(permissionsData)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load embedded permissions")
	}

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("Successfully loaded embedded permissions")

	return permissions
}
