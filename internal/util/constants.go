package util

// 导出文件名中的时间戳
const ExportTimeFormat = "20060102T150405Z"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const (
	DatabaseMySQL  = "mysql"
	DatabaseSQLite = "sqlite"
)

const (
	MimeJSON = "application/json"
)

// 用户数据导出文件存放目录
const ExportPrefix = "exports"
