package utils

import "crypto/rand"

const randChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandText 生成指定长度的随机字符串
func RandText(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i, b := range buf {
		buf[i] = randChars[int(b)%len(randChars)]
	}
	return string(buf)
}
