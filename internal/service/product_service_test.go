package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeOrderBy(t *testing.T) {
	assert.Equal(t, "price ASC", NormalizeOrderBy("price asc"))
	assert.Equal(t, "price DESC", NormalizeOrderBy("price desc"))

	// 白名单之外的输入（包括注入尝试）全部丢弃
	assert.Equal(t, "", NormalizeOrderBy(""))
	assert.Equal(t, "", NormalizeOrderBy("name asc"))
	assert.Equal(t, "", NormalizeOrderBy("price asc; DROP TABLE products"))
}
