package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotenv: paths 중 실제로 있는 파일만 읽는다. 인자가 없으면 ".env".
// 이미 설정된 환경 변수는 그대로 둔다.
func LoadDotenv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	present := make([]string, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return fmt.Errorf("stat dotenv %s failed: %w", path, err)
		case !info.IsDir():
			present = append(present, path)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("load dotenv failed: %w", err)
	}
	return nil
}
