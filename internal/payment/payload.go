package payment

import (
	"encoding/json"
	"strconv"
	"strings"
)

// LookupFold 忽略大小写读取 map 值
func LookupFold(values map[string]string, key string) string {
	if len(values) == 0 || strings.TrimSpace(key) == "" {
		return ""
	}
	if value, ok := values[key]; ok {
		return strings.TrimSpace(value)
	}
	for k, value := range values {
		if strings.EqualFold(strings.TrimSpace(k), key) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// DecodeRawMap 解码 JSON 对象，数字保留为 json.Number
func DecodeRawMap(body []byte) (map[string]interface{}, error) {
	decoder := json.NewDecoder(strings.NewReader(string(body)))
	decoder.UseNumber()
	var raw map[string]interface{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	return raw, nil
}

// ReadString 读取字符串字段，数字按文本输出
func ReadString(raw map[string]interface{}, key string) string {
	if raw == nil || strings.TrimSpace(key) == "" {
		return ""
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return strings.TrimSpace(typed.String())
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(typed, 10)
	case int:
		return strconv.Itoa(typed)
	default:
		return ""
	}
}

// ReadMap 读取嵌套对象
func ReadMap(raw map[string]interface{}, key string) map[string]interface{} {
	if raw == nil || strings.TrimSpace(key) == "" {
		return nil
	}
	mapped, ok := raw[key].(map[string]interface{})
	if !ok {
		return nil
	}
	return mapped
}

// ReadInt64 读取整数字段
func ReadInt64(raw map[string]interface{}, key string) int64 {
	if raw == nil || strings.TrimSpace(key) == "" {
		return 0
	}
	switch typed := raw[key].(type) {
	case int64:
		return typed
	case int:
		return int64(typed)
	case float64:
		return int64(typed)
	case json.Number:
		if parsed, err := typed.Int64(); err == nil {
			return parsed
		}
		floatVal, err := typed.Float64()
		if err != nil {
			return 0
		}
		return int64(floatVal)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

// ParseUintID 解析正整数 ID，非法值返回 0
func ParseUintID(raw string) uint {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0
	}
	return uint(id)
}

// ParseExternalReference 解析 "user:{id};affiliate:{id}" 形式的外部引用，纯数字视为用户ID
func ParseExternalReference(ref string) (userID uint, affiliateID uint) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, 0
	}
	if id := ParseUintID(ref); id > 0 {
		return id, 0
	}
	for _, part := range strings.Split(ref, ";") {
		kv := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(kv[0])) {
		case "user", "user_id":
			userID = ParseUintID(kv[1])
		case "affiliate", "affiliate_id":
			affiliateID = ParseUintID(kv[1])
		}
	}
	return userID, affiliateID
}
