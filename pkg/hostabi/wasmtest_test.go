package hostabi

import "bytes"

const (
	valI32 = 0x7f
	valI64 = 0x7e
)

// Minimal hand-encoded WASM binary builders used only by this package's
// tests. wazero has no WAT parser, so guest modules exercising the real
// instantiate/call path are built directly in binary form.

func encodeLEB128(value uint32) []byte {
	var buf []byte
	for {
		b := byte(value & 0x7f)
		value >>= 7
		if value != 0 {
			b |= 0x80
		}
		buf = append(buf, b)
		if value == 0 {
			break
		}
	}
	return buf
}

func encodeSection(id byte, content []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(id)
	buf.Write(encodeLEB128(uint32(len(content))))
	buf.Write(content)
	return buf.Bytes()
}

func encodeVector(items [][]byte) []byte {
	var buf bytes.Buffer
	buf.Write(encodeLEB128(uint32(len(items))))
	for _, item := range items {
		buf.Write(item)
	}
	return buf.Bytes()
}

func encodeImport(module, name string, kind, typeIdx byte) []byte {
	var buf bytes.Buffer
	buf.Write(encodeLEB128(uint32(len(module))))
	buf.WriteString(module)
	buf.Write(encodeLEB128(uint32(len(name))))
	buf.WriteString(name)
	buf.WriteByte(kind)
	buf.WriteByte(typeIdx)
	return buf.Bytes()
}

func encodeExport(name string, kind, idx byte) []byte {
	var buf bytes.Buffer
	buf.Write(encodeLEB128(uint32(len(name))))
	buf.WriteString(name)
	buf.WriteByte(kind)
	buf.WriteByte(idx)
	return buf.Bytes()
}

func encodeCode(body []byte) []byte {
	full := append([]byte{0}, body...) // 0 local declarations
	var buf bytes.Buffer
	buf.Write(encodeLEB128(uint32(len(full))))
	buf.Write(full)
	return buf.Bytes()
}

// buildGuestModule assembles a guest module that imports one zero-result
// env function (importName, taking importParamCount i32 params) and
// exports "memory" plus a "main" export running mainBody, which may call
// the import at func index 0.
func buildGuestModule(importName string, importParamCount int, mainBody []byte) []byte {
	var b bytes.Buffer
	b.Write([]byte{0x00, 0x61, 0x73, 0x6d}) // magic
	b.Write([]byte{0x01, 0x00, 0x00, 0x00}) // version

	importParams := make([]byte, importParamCount)
	for i := range importParams {
		importParams[i] = 0x7f // i32
	}
	importType := append([]byte{0x60, byte(importParamCount)}, importParams...)
	importType = append(importType, 0) // no results

	mainType := []byte{0x60, 0, 0} // () -> ()

	types := encodeSection(1, encodeVector([][]byte{importType, mainType}))
	b.Write(types)

	imports := [][]byte{encodeImport("env", importName, 0x00, 0)}
	b.Write(encodeSection(2, encodeVector(imports)))

	// one local function ("main"), using type 1
	b.Write(encodeSection(3, []byte{1, 1}))

	// 1 memory, min 1 page
	b.Write(encodeSection(5, []byte{1, 0x00, 1}))

	exports := [][]byte{
		encodeExport("memory", 0x02, 0),
		encodeExport("main", 0x00, 1), // func index 1: import occupies index 0
	}
	b.Write(encodeSection(7, encodeVector(exports)))

	b.Write(encodeSection(10, encodeVector([][]byte{encodeCode(mainBody)})))

	return b.Bytes()
}

// callImport0 encodes "call func 0" followed by end.
func callImport0(args ...[]byte) []byte {
	var body []byte
	for _, a := range args {
		body = append(body, a...)
	}
	body = append(body, 0x10, 0x00) // call 0
	body = append(body, 0x0b)       // end
	return body
}

func i32Const(v int32) []byte {
	return append([]byte{0x41}, encodeSignedLEB128(v)...)
}

// i64Const encodes i64.const. Reuses the 32-bit signed LEB128 encoder,
// which is byte-identical to the 64-bit form for the small magnitudes
// (shard ids, offsets) these tests ever pass.
func i64Const(v int64) []byte {
	return append([]byte{0x42}, encodeSignedLEB128(int32(v))...)
}

func i32Load(align, offset uint32) []byte {
	var buf bytes.Buffer
	buf.WriteByte(0x28) // i32.load
	buf.Write(encodeLEB128(align))
	buf.Write(encodeLEB128(offset))
	return buf.Bytes()
}

// buildTypedGuestModule assembles a guest module that imports one env
// function (importName, with an arbitrary i32/i64 param/result
// signature) and exports "memory" plus a "main" export with its own
// result signature, running mainBody, which may call the import at
// func index 0.
func buildTypedGuestModule(importName string, importParams, importResults []byte, mainResults []byte, mainBody []byte) []byte {
	var b bytes.Buffer
	b.Write([]byte{0x00, 0x61, 0x73, 0x6d}) // magic
	b.Write([]byte{0x01, 0x00, 0x00, 0x00}) // version

	importType := encodeFuncType(importParams, importResults)
	mainType := encodeFuncType(nil, mainResults)

	b.Write(encodeSection(1, encodeVector([][]byte{importType, mainType})))
	b.Write(encodeSection(2, encodeVector([][]byte{encodeImport("env", importName, 0x00, 0)})))
	b.Write(encodeSection(3, []byte{1, 1})) // one local function, type 1

	b.Write(encodeSection(5, []byte{1, 0x00, 1})) // 1 memory, min 1 page

	exports := [][]byte{
		encodeExport("memory", 0x02, 0),
		encodeExport("main", 0x00, 1), // func index 1: import occupies index 0
	}
	b.Write(encodeSection(7, encodeVector(exports)))

	b.Write(encodeSection(10, encodeVector([][]byte{encodeCode(mainBody)})))

	return b.Bytes()
}

func encodeValVec(types []byte) []byte {
	var buf bytes.Buffer
	buf.Write(encodeLEB128(uint32(len(types))))
	buf.Write(types)
	return buf.Bytes()
}

func encodeFuncType(params, results []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(0x60)
	buf.Write(encodeValVec(params))
	buf.Write(encodeValVec(results))
	return buf.Bytes()
}

func encodeSignedLEB128(value int32) []byte {
	var buf []byte
	for {
		b := byte(value & 0x7f)
		value >>= 7
		if (value == 0 && b&0x40 == 0) || (value == -1 && b&0x40 != 0) {
			buf = append(buf, b)
			break
		}
		b |= 0x80
		buf = append(buf, b)
	}
	return buf
}

// noMemoryModule builds a guest that exports "main" but declares no
// memory at all, exercising ErrNoGuestMemory.
func noMemoryModule() []byte {
	var b bytes.Buffer
	b.Write([]byte{0x00, 0x61, 0x73, 0x6d})
	b.Write([]byte{0x01, 0x00, 0x00, 0x00})

	mainType := []byte{0x60, 0, 0}
	b.Write(encodeSection(1, encodeVector([][]byte{mainType})))
	b.Write(encodeSection(3, []byte{1, 0}))
	b.Write(encodeSection(7, encodeVector([][]byte{
		encodeExport("main", 0x00, 0),
	})))
	b.Write(encodeSection(10, encodeVector([][]byte{encodeCode([]byte{0x0b})})))
	return b.Bytes()
}

// unreachableModule builds a guest exporting "memory" and a "main" that
// traps via the unreachable instruction.
func unreachableModule() []byte {
	var b bytes.Buffer
	b.Write([]byte{0x00, 0x61, 0x73, 0x6d})
	b.Write([]byte{0x01, 0x00, 0x00, 0x00})

	mainType := []byte{0x60, 0, 0}
	b.Write(encodeSection(1, encodeVector([][]byte{mainType})))
	b.Write(encodeSection(3, []byte{1, 0}))
	b.Write(encodeSection(5, []byte{1, 0x00, 1}))
	b.Write(encodeSection(7, encodeVector([][]byte{
		encodeExport("memory", 0x02, 0),
		encodeExport("main", 0x00, 0),
	})))
	b.Write(encodeSection(10, encodeVector([][]byte{encodeCode([]byte{0x00, 0x0b})})))
	return b.Bytes()
}
