package idgen

// 以下函数都使用默认布局。tiny 使用自定义块大小时请用 Generator 上的同名方法。

// ExtractTimestamp 还原 tiny/mini/48/64 方案 ID 的 Unix 毫秒时间戳
func ExtractTimestamp(s Scheme, id uint64) int64 {
	l := LayoutOf(s)
	return l.ExtractTimestamp(id)
}

// ExtractTimestamp128 还原 128 位 ID 的 Unix 毫秒时间戳
func ExtractTimestamp128(id ID128) int64 {
	l := LayoutOf(Scheme128)
	return l.ExtractTimestamp128(id)
}

// ExtractTimestampHex 解析十六进制 ID 并还原时间戳，格式错误返回 ErrMalformedID
func ExtractTimestampHex(s Scheme, str string) (int64, error) {
	return extractFromString(LayoutOf(s), str, ParseHex, ParseHex128)
}

// ExtractTimestampAscii 解析 36 进制 ID 并还原时间戳，格式错误返回 ErrMalformedID
func ExtractTimestampAscii(s Scheme, str string) (int64, error) {
	return extractFromString(LayoutOf(s), str, ParseAscii, ParseAscii128)
}

func ExtractTimestampTiny(id uint64) int64 { return ExtractTimestamp(SchemeTiny, id) }
func ExtractTimestampMini(id uint64) int64 { return ExtractTimestamp(SchemeMini, id) }
func ExtractTimestamp48(id uint64) int64   { return ExtractTimestamp(Scheme48, id) }
func ExtractTimestamp64(id uint64) int64   { return ExtractTimestamp(Scheme64, id) }

func ExtractTimestampTinyHex(s string) (int64, error) { return ExtractTimestampHex(SchemeTiny, s) }
func ExtractTimestampMiniHex(s string) (int64, error) { return ExtractTimestampHex(SchemeMini, s) }
func ExtractTimestamp48Hex(s string) (int64, error)   { return ExtractTimestampHex(Scheme48, s) }
func ExtractTimestamp64Hex(s string) (int64, error)   { return ExtractTimestampHex(Scheme64, s) }
func ExtractTimestamp128Hex(s string) (int64, error)  { return ExtractTimestampHex(Scheme128, s) }

func ExtractTimestampTinyAscii(s string) (int64, error) { return ExtractTimestampAscii(SchemeTiny, s) }
func ExtractTimestampMiniAscii(s string) (int64, error) { return ExtractTimestampAscii(SchemeMini, s) }
func ExtractTimestamp48Ascii(s string) (int64, error)   { return ExtractTimestampAscii(Scheme48, s) }
func ExtractTimestamp64Ascii(s string) (int64, error)   { return ExtractTimestampAscii(Scheme64, s) }
func ExtractTimestamp128Ascii(s string) (int64, error)  { return ExtractTimestampAscii(Scheme128, s) }

// Decode 按默认布局拆分 ID
func Decode(s Scheme, id uint64) Parts {
	l := LayoutOf(s)
	return l.Decode(id)
}

// Decode128 拆分 128 位 ID
func Decode128(id ID128) Parts {
	l := LayoutOf(Scheme128)
	return l.Decode128(id)
}
