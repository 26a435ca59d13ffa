package game

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Dictionary 词典协作者：判断字符串是否是某个合法单词的前缀
type Dictionary interface {
	IsPrefix(s string) bool
}

// WordList 进程启动时加载一次的只读词表，加载后不再修改，可被多个读者共享
type WordList struct {
	words []string // 小写、升序、去重
}

// NewWordList 由内存中的单词构建词表
func NewWordList(words []string) *WordList {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		out = append(out, w)
	}
	sort.Strings(out)
	uniq := out[:0]
	for i, w := range out {
		if i > 0 && w == out[i-1] {
			continue
		}
		uniq = append(uniq, w)
	}
	return &WordList{words: uniq}
}

// LoadWordList 每行一个单词
func LoadWordList(r io.Reader) (*WordList, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		words = append(words, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	return NewWordList(words), nil
}

// LoadWordListFile 从文件加载词表
func LoadWordListFile(path string) (*WordList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()
	return LoadWordList(f)
}

func (l *WordList) Len() int { return len(l.words) }

// IsPrefix 二分查找第一个 >= s 的单词，检查其是否以 s 开头
func (l *WordList) IsPrefix(s string) bool {
	s = strings.ToLower(s)
	i := sort.SearchStrings(l.words, s)
	return i < len(l.words) && strings.HasPrefix(l.words[i], s)
}
