package utils

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// LoadEnv 根据环境加载 .env 文件（.env.<env> 优先于 .env）
func LoadEnv(env string) error {
	if env != "" {
		if err := godotenv.Load(fmt.Sprintf(".env.%s", env)); err == nil {
			return nil
		}
	}
	return godotenv.Load()
}

// GetEnv 获取环境变量值
func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetIntEnv 获取整数环境变量值
func GetIntEnv(key string) int64 {
	return cast.ToInt64(os.Getenv(key))
}

// GetBoolEnv 获取布尔环境变量值
func GetBoolEnv(key string) bool {
	return cast.ToBool(os.Getenv(key))
}
