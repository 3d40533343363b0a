package model

import "fmt"

// The JSON shape is the interchange format for clipboard payloads and
// persistence. Ids round-trip verbatim; a consumer that cannot trust them
// (paste, import) re-keys with ReassignIDs after decoding.

var kindNames = map[ParagraphKind]string{
	KindHeading1: "heading1",
	KindHeading2: "heading2",
	KindHeading3: "heading3",
	KindHeading4: "heading4",
	KindQuote:    "quote",
	KindBullet:   "bullet",
	KindNumber:   "number",
}

var kindByName = map[string]ParagraphKind{}

var alignNames = map[Alignment]string{
	AlignCenter:  "center",
	AlignRight:   "right",
	AlignJustify: "justify",
}

var alignByName = map[string]Alignment{}

func init() {
	for k, name := range kindNames {
		kindByName[name] = k
	}
	for a, name := range alignNames {
		alignByName[name] = a
	}
}

// ToJSON returns the JSON-serializable representation of the document.
func (d *Document) ToJSON() map[string]interface{} {
	blocks := make([]interface{}, len(d.Blocks))
	for i, b := range d.Blocks {
		blocks[i] = blockToJSON(b)
	}
	return map[string]interface{}{"id": d.ID, "blocks": blocks}
}

func blockToJSON(b BlockNode) map[string]interface{} {
	switch b := b.(type) {
	case *Paragraph:
		runs := make([]interface{}, len(b.Content))
		for i, r := range b.Content {
			runs[i] = r.ToJSON()
		}
		obj := map[string]interface{}{"type": "paragraph", "id": b.ID, "content": runs}
		if !b.Style.IsDefault() {
			obj["style"] = paragraphStyleToJSON(b.Style)
		}
		return obj
	case *Table:
		rows := make([]interface{}, len(b.Rows))
		for i, row := range b.Rows {
			cells := make([]interface{}, len(row.Cells))
			for j, cell := range row.Cells {
				cells[j] = map[string]interface{}{"id": cell.ID, "content": cell.Content.ToJSON()}
			}
			rows[i] = map[string]interface{}{"id": row.ID, "cells": cells}
		}
		return map[string]interface{}{"type": "table", "id": b.ID, "numColumns": b.NumColumns, "rows": rows}
	case *Image:
		obj := map[string]interface{}{"type": "image", "id": b.ID, "src": b.Src}
		if b.Caption != "" {
			obj["caption"] = b.Caption
		}
		return obj
	case *CodeBlock:
		obj := map[string]interface{}{"type": "codeBlock", "id": b.ID, "code": b.Code}
		if b.Language != "" {
			obj["language"] = b.Language
		}
		return obj
	}
	panic(fmt.Sprintf("unknown block node %T", b))
}

// ToJSON returns the JSON-serializable representation of the run.
func (r *TextRun) ToJSON() map[string]interface{} {
	obj := map[string]interface{}{"id": r.ID, "text": r.Text}
	if !r.Style.IsZero() {
		obj["style"] = textStyleToJSON(r.Style)
	}
	return obj
}

func textStyleToJSON(s TextStyle) map[string]interface{} {
	obj := map[string]interface{}{}
	if s.Bold {
		obj["bold"] = true
	}
	if s.Italic {
		obj["italic"] = true
	}
	if s.Underline {
		obj["underline"] = true
	}
	if s.Strikethrough {
		obj["strikethrough"] = true
	}
	if s.Code {
		obj["code"] = true
	}
	switch s.Script {
	case ScriptSub:
		obj["script"] = "sub"
	case ScriptSuper:
		obj["script"] = "super"
	}
	if s.Link != "" {
		obj["link"] = s.Link
	}
	return obj
}

func paragraphStyleToJSON(s ParagraphStyle) map[string]interface{} {
	obj := map[string]interface{}{}
	if name, ok := kindNames[s.Kind]; ok {
		obj["kind"] = name
	}
	if s.ListID != "" {
		obj["listId"] = s.ListID
	}
	if name, ok := alignNames[s.Align]; ok {
		obj["align"] = name
	}
	if s.Indent != 0 {
		obj["indent"] = s.Indent
	}
	return obj
}

// DocumentFromJSON deserializes a document from its JSON representation.
func DocumentFromJSON(obj map[string]interface{}) (*Document, error) {
	id, err := stringField(obj, "id")
	if err != nil {
		return nil, err
	}
	raw, ok := obj["blocks"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid blocks for document %s", id)
	}
	blocks := make([]BlockNode, len(raw))
	for i, rb := range raw {
		bobj, ok := rb.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid block in document %s", id)
		}
		b, err := blockFromJSON(bobj)
		if err != nil {
			return nil, err
		}
		blocks[i] = b
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("document %s has no blocks", id)
	}
	return &Document{ID: id, Blocks: blocks}, nil
}

func blockFromJSON(obj map[string]interface{}) (BlockNode, error) {
	typ, err := stringField(obj, "type")
	if err != nil {
		return nil, err
	}
	id, err := stringField(obj, "id")
	if err != nil {
		return nil, err
	}
	switch typ {
	case "paragraph":
		style := ParagraphStyle{}
		if sobj, ok := obj["style"].(map[string]interface{}); ok {
			style = paragraphStyleFromJSON(sobj)
		}
		raw, ok := obj["content"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid content for paragraph %s", id)
		}
		runs := make([]*TextRun, len(raw))
		for i, rr := range raw {
			robj, ok := rr.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("invalid run in paragraph %s", id)
			}
			r, err := textRunFromJSON(robj)
			if err != nil {
				return nil, err
			}
			runs[i] = r
		}
		if len(runs) == 0 {
			return nil, fmt.Errorf("paragraph %s has no runs", id)
		}
		return &Paragraph{ID: id, Style: style, Content: runs}, nil
	case "table":
		numColumns, err := intField(obj, "numColumns")
		if err != nil {
			return nil, err
		}
		raw, ok := obj["rows"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid rows for table %s", id)
		}
		rows := make([]*Row, len(raw))
		for i, rr := range raw {
			robj, ok := rr.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("invalid row in table %s", id)
			}
			row, err := rowFromJSON(robj, numColumns)
			if err != nil {
				return nil, err
			}
			rows[i] = row
		}
		return &Table{ID: id, Rows: rows, NumColumns: numColumns}, nil
	case "image":
		src, err := stringField(obj, "src")
		if err != nil {
			return nil, err
		}
		caption, _ := obj["caption"].(string)
		return &Image{ID: id, Src: src, Caption: caption}, nil
	case "codeBlock":
		code, err := stringField(obj, "code")
		if err != nil {
			return nil, err
		}
		language, _ := obj["language"].(string)
		return &CodeBlock{ID: id, Code: code, Language: language}, nil
	}
	return nil, fmt.Errorf("unknown block type %q", typ)
}

func rowFromJSON(obj map[string]interface{}, numColumns int) (*Row, error) {
	id, err := stringField(obj, "id")
	if err != nil {
		return nil, err
	}
	raw, ok := obj["cells"].([]interface{})
	if !ok || len(raw) != numColumns {
		return nil, fmt.Errorf("row %s does not have %d cells", id, numColumns)
	}
	cells := make([]*Cell, len(raw))
	for i, rc := range raw {
		cobj, ok := rc.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid cell in row %s", id)
		}
		cellID, err := stringField(cobj, "id")
		if err != nil {
			return nil, err
		}
		dobj, ok := cobj["content"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid content for cell %s", cellID)
		}
		content, err := DocumentFromJSON(dobj)
		if err != nil {
			return nil, err
		}
		cells[i] = &Cell{ID: cellID, Content: content}
	}
	return &Row{ID: id, Cells: cells}, nil
}

func textRunFromJSON(obj map[string]interface{}) (*TextRun, error) {
	id, err := stringField(obj, "id")
	if err != nil {
		return nil, err
	}
	text, ok := obj["text"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid text for run %s", id)
	}
	style := TextStyle{}
	if sobj, ok := obj["style"].(map[string]interface{}); ok {
		style = textStyleFromJSON(sobj)
	}
	return &TextRun{ID: id, Text: text, Style: style}, nil
}

func textStyleFromJSON(obj map[string]interface{}) TextStyle {
	s := TextStyle{}
	s.Bold, _ = obj["bold"].(bool)
	s.Italic, _ = obj["italic"].(bool)
	s.Underline, _ = obj["underline"].(bool)
	s.Strikethrough, _ = obj["strikethrough"].(bool)
	s.Code, _ = obj["code"].(bool)
	switch obj["script"] {
	case "sub":
		s.Script = ScriptSub
	case "super":
		s.Script = ScriptSuper
	}
	s.Link, _ = obj["link"].(string)
	return s
}

func paragraphStyleFromJSON(obj map[string]interface{}) ParagraphStyle {
	s := ParagraphStyle{}
	if name, ok := obj["kind"].(string); ok {
		s.Kind = kindByName[name]
	}
	s.ListID, _ = obj["listId"].(string)
	if name, ok := obj["align"].(string); ok {
		s.Align = alignByName[name]
	}
	if indent, err := intField(obj, "indent"); err == nil {
		s.Indent = clampIndent(indent)
	}
	return s
}

func stringField(obj map[string]interface{}, key string) (string, error) {
	v, ok := obj[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("missing %s field", key)
	}
	return v, nil
}

// intField reads a number that may arrive as int (built in process) or
// float64 (decoded by encoding/json).
func intField(obj map[string]interface{}, key string) (int, error) {
	switch v := obj[key].(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	}
	return 0, fmt.Errorf("missing %s field", key)
}
