package models

// CheckinStatus distinguishes a live check-in from a backfilled one.
type CheckinStatus string

const (
	CheckinStatusNormal  CheckinStatus = "Normal"
	CheckinStatusReissue CheckinStatus = "Reissue"
)

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)
