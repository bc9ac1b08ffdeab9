package services

// Keys of the local store.
const (
	KeyOnboardingCompleted = "onboarding_completed"
	KeyAnonSetupCompleted  = "anon_mode_setup_completed"
	KeyUserProfile         = "user_profile"
	KeyUserBackup          = "user_backup"
	KeyAnonProfile         = "anon_profile"
	KeyStaffToken          = "staff_auth_token"
)

// anonProfile is what the anonymous setup screen collects before a user
// record exists.
type anonProfile struct {
	DisplayName string `json:"display_name"`
	AvatarGlyph string `json:"avatar_glyph"`
}
