package driver

import "bytes"

// Minimal hand-encoded WASM binary builder for this package's tests, same
// technique as pkg/hostabi's test helpers (wazero has no WAT parser).

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
	full := append([]byte{0}, body...)
	var buf bytes.Buffer
	buf.Write(encodeLEB128(uint32(len(full))))
	buf.Write(full)
	return buf.Bytes()
}

// saveZeroRootModule builds a guest that imports eth2_savePostStateRoot
// and, on main, calls it with offset 0 — linear memory starts zeroed, so
// this always saves the all-zero state root.
func saveZeroRootModule() []byte {
	var b bytes.Buffer
	b.Write([]byte{0x00, 0x61, 0x73, 0x6d})
	b.Write([]byte{0x01, 0x00, 0x00, 0x00})

	importType := []byte{0x60, 1, 0x7f, 0} // (i32) -> ()
	mainType := []byte{0x60, 0, 0}         // () -> ()
	b.Write(encodeSection(1, encodeVector([][]byte{importType, mainType})))

	b.Write(encodeSection(2, encodeVector([][]byte{
		encodeImport("env", "eth2_savePostStateRoot", 0x00, 0),
	})))

	b.Write(encodeSection(3, []byte{1, 1})) // one local func, type 1

	b.Write(encodeSection(5, []byte{1, 0x00, 1})) // 1 memory, min 1 page

	b.Write(encodeSection(7, encodeVector([][]byte{
		encodeExport("memory", 0x02, 0),
		encodeExport("main", 0x00, 1),
	})))

	mainBody := []byte{
		0x41, 0x00, // i32.const 0
		0x10, 0x00, // call func 0 (eth2_savePostStateRoot)
		0x0b, // end
	}
	b.Write(encodeSection(10, encodeVector([][]byte{encodeCode(mainBody)})))

	return b.Bytes()
}
