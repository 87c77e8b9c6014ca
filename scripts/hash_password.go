package main

import (
	"fmt"
	"os"

	"bistro/internal/pkg/password"
)

// 为 Basic 认证生成 bcrypt 密码哈希，写入配置的 auth.password 后
// 服务端不再保存明文：
//
//	go run ./scripts/hash_password.go <password>
func main() {
	if len(os.Args) != 2 || os.Args[1] == "" {
		fmt.Fprintln(os.Stderr, "usage: hash_password <password>")
		os.Exit(1)
	}

	hash, err := password.Hash(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash password: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
