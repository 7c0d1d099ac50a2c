package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/carrel-app/carrel/pkg/domain/model"
)

func TestFileMap_OrderPreserved(t *testing.T) {
	m := model.NewFileMap()
	m.Set("b.html", []byte("b"))
	m.Set("a.html", []byte("a"))
	m.Set("c/d.css", []byte("d"))

	gt.Equal(t, m.Paths(), []string{"b.html", "a.html", "c/d.css"})
	gt.Number(t, m.Len()).Equal(3)
}

func TestFileMap_LastWriteWinsKeepsPosition(t *testing.T) {
	m := model.NewFileMap()
	m.Set("x", []byte("first"))
	m.Set("y", []byte("other"))
	m.Set("x", []byte("second"))

	data, ok := m.Get("x")
	gt.True(t, ok)
	gt.Equal(t, string(data), "second")
	gt.Equal(t, m.Paths(), []string{"x", "y"})
	gt.Number(t, m.Len()).Equal(2)
}

func TestContentSet_FileCount(t *testing.T) {
	var nilSet *model.ContentSet
	gt.Number(t, nilSet.FileCount()).Equal(0)

	m := model.NewFileMap()
	m.Set("index.html", []byte("<html></html>"))
	set := &model.ContentSet{ID: "test", Files: m}
	gt.Number(t, set.FileCount()).Equal(1)
}

func TestDefaultContentOptions(t *testing.T) {
	gt.True(t, model.DefaultContentOptions().OpenExternalLinksInNewWindow)
}
