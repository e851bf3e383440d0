package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// gin context keys
const (
	ContextUserKey   = "user"
	ContextActorKey  = "actor"
	ContextConfigKey = "config"
)
