package profiling

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/safearchive/zip"
	"github.com/google/safeopen"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
)

// ArchiveResults packs the named files of dir into zipName beneath dir.
// Entries of a previous archive are carried over unless a file of the
// same name replaces them. It returns the number of archived entries.
func ArchiveResults(dir, zipName string, files []string) (n int, err error) {
	tmpName := zipName + ".tmp"
	tmp, err := safeopen.OpenFileBeneath(dir, tmpName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, infra.WrapErrorStackWithMessage(err, "create "+tmpName)
	}
	zw := zip.NewWriter(tmp)
	defer func() {
		err = multierr.Combine(err, zw.Close(), tmp.Close())
		if err != nil {
			_ = os.Remove(filepath.Join(dir, tmpName))
			return
		}
		err = os.Rename(filepath.Join(dir, tmpName), filepath.Join(dir, zipName))
	}()

	for _, name := range files {
		if err = copyIntoZip(zw, dir, name); err != nil {
			return n, err
		}
		n++
	}

	prev, err := zip.OpenReader(filepath.Join(dir, zipName))
	if os.IsNotExist(err) {
		return n, nil
	}
	if err != nil {
		return n, infra.WrapErrorStackWithMessage(err, "open previous "+zipName)
	}
	defer func() {
		err = multierr.Append(err, prev.Close())
	}()
	prev.SetSecurityMode(prev.GetSecurityMode() | zip.MaximumSecurityMode)
	for _, f := range prev.File {
		if f.Mode().IsDir() || lo.Contains(files, f.Name) {
			continue
		}
		if err = copyZipEntry(zw, f); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func copyIntoZip(zw *zip.Writer, dir, name string) error {
	src, err := safeopen.OpenBeneath(dir, name)
	if err != nil {
		return infra.WrapErrorStackWithMessage(err, "open "+name)
	}
	defer func() { _ = src.Close() }()
	dst, err := zw.Create(name)
	if err != nil {
		return infra.WrapErrorStack(err)
	}
	_, err = io.Copy(dst, src)
	return err
}

func copyZipEntry(zw *zip.Writer, f *zip.File) error {
	src, err := f.Open()
	if err != nil {
		return infra.WrapErrorStackWithMessage(err, "read entry "+f.Name)
	}
	defer func() { _ = src.Close() }()
	dst, err := zw.CreateHeader(&zip.FileHeader{
		Name:   f.Name,
		Method: f.Method,
	})
	if err != nil {
		return infra.WrapErrorStack(err)
	}
	_, err = io.Copy(dst, src)
	return err
}
