package store

// Remote store path schema:
//
//	sessions/{id}                      session metadata record
//	sessions/{id}/members/{deviceId}   per-member participation record
//	sessions/{id}/cue                  current broadcast cue
//	sessions/{id}/leadActions/{key}    append-only lead action log
//	sessions/{id}/sessionSettings      shared tile configuration

func SessionPath(id string) string { return "sessions/" + id }

func MembersPath(id string) string { return "sessions/" + id + "/members" }

func MemberPath(id, deviceID string) string { return "sessions/" + id + "/members/" + deviceID }

func CuePath(id string) string { return "sessions/" + id + "/cue" }

func LeadActionsPath(id string) string { return "sessions/" + id + "/leadActions" }

func SessionSettingsPath(id string) string { return "sessions/" + id + "/sessionSettings" }
