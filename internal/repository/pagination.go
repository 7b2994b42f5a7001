package repository

import "gorm.io/gorm"

// maxListPageSize 后台列表单页上限；pageSize <= 0 表示不分页（CSV 导出）
const maxListPageSize = 200

func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if pageSize > maxListPageSize {
		pageSize = maxListPageSize
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}
