package model

// SpeakerProfile is the public profile of a user speaking at events.
// DisplayName follows the user's full name.
type SpeakerProfile struct {
	ID               uint64            `json:"id"`                 // speaker_profiles.id
	UserID           uint64            `json:"user_id"`            // speaker_profiles.user_id
	DisplayName      string            `json:"display_name"`       // speaker_profiles.display_name
	Company          string            `json:"company"`            // speaker_profiles.company
	Designation      string            `json:"designation"`        // speaker_profiles.designation
	DisplayImage     string            `json:"display_image"`      // speaker_profiles.display_image
	SocialMediaLinks []SocialMediaLink `json:"social_media_links"` // speaker_profiles.social_media_links (JSON)
}

// SocialMediaLink is one profile link of a speaker.
type SocialMediaLink struct {
	Network string `json:"network"`
	URL     string `json:"url"`
}
