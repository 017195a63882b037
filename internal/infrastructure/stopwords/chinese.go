package stopwords

// Chinese returns a fresh copy of the Chinese stopword set.
func Chinese() map[string]struct{} {
	return toSet(chinese)
}

var chinese = []string{
	"的", "了", "和", "是", "我", "也", "在", "有", "就", "人",
	"都", "一", "一个", "上", "中", "大", "用", "对", "地", "与",
	"之", "及", "或", "而", "被", "从", "但", "等", "很", "到",
	"说", "要", "会", "可", "你", "自己", "我们", "没有", "他们", "它",
	"其", "这", "那", "他", "她", "吗", "吧", "呢", "啊", "把",
	"让", "向", "于", "以", "为", "并", "因为", "所以", "如果", "虽然",
	"这个", "那个", "这些", "那些", "什么", "怎么", "还", "又", "再", "最",
	"更", "不", "没", "能", "着", "过", "给", "跟", "比", "将",
}
